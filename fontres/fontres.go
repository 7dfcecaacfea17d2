// Package fontres 把人类可读的字体名解析为磁盘上的字体文件。
// 字体的下载与系统字体目录探测不在职责范围内：解析器只报告目录里已有的文件。
package fontres

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolver 是核心面向的字体解析接口。
type Resolver interface {
	// Resolve 把字体名解析为可用的字体文件路径。
	Resolve(label string) (string, bool)
	// Available 返回全部可用字体文件路径，顺序稳定。
	Available() []string
}

// aliases 把常用字体名映射为按优先级排列的候选文件名。
var aliases = map[string][]string{
	"宋体":     {"simsun.ttc", "simhei.ttf", "Songti.ttc", "STSong.ttf"},
	"song":   {"simsun.ttc", "simhei.ttf", "Songti.ttc", "STSong.ttf"},
	"simsun": {"simsun.ttc", "simhei.ttf", "Songti.ttc", "STSong.ttf"},
	"楷体":     {"simkai.ttf", "Kaiti.ttc", "STKaiti.ttf"},
	"kaiti":  {"simkai.ttf", "Kaiti.ttc", "STKaiti.ttf"},
	"simkai": {"simkai.ttf", "Kaiti.ttc", "STKaiti.ttf"},
	"黑体":     {"simhei.ttf", "Heiti.ttc", "PingFang.ttc"},
	"hei":    {"simhei.ttf", "Heiti.ttc", "PingFang.ttc"},
	"simhei": {"simhei.ttf", "Heiti.ttc", "PingFang.ttc"},
	"手写-马善政":  {"MaShanZheng-Regular.ttf"},
	"手写-芝蔓行":  {"ZhiMangXing-Regular.ttf"},
	"手写-龙藏":   {"LongCang-Regular.ttf"},
}

// DirResolver 在一组目录中查找字体文件。
type DirResolver struct {
	Dirs []string
}

// NewDirResolver 创建目录扫描解析器。
func NewDirResolver(dirs ...string) *DirResolver {
	return &DirResolver{Dirs: dirs}
}

var _ Resolver = (*DirResolver)(nil)

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}

// Available 扫描全部目录，返回排序后的字体文件路径。
func (r *DirResolver) Available() []string {
	var paths []string
	for _, dir := range r.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !isFontFile(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}

// Resolve 按别名表把字体名解析为文件路径；
// 找不到别名时把字体名视作文件名直接查找。
func (r *DirResolver) Resolve(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}

	candidates, ok := aliases[strings.ToLower(label)]
	if !ok {
		candidates = []string{label}
		if !isFontFile(label) {
			candidates = append(candidates, label+".ttf", label+".otf")
		}
	}
	for _, name := range candidates {
		for _, dir := range r.Dirs {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}
