package style

import (
	"regexp"
	"strings"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	excessBlank   = regexp.MustCompile(`\n{3,}`)
	repeatedStop  = regexp.MustCompile(`。{2,}`)
)

// Normalize 是不依赖语体的最终清理：去掉行尾空白，三个以上连续换行
// 收敛为两个（保留段落分隔），连续句号收敛为一个，整体去除首尾空白，
// 输出恒以单个换行结尾。幂等：对已规范化的文本再调用是无操作。
func Normalize(text string) string {
	x := trailingSpace.ReplaceAllString(text, "\n")
	x = excessBlank.ReplaceAllString(x, "\n\n")
	x = repeatedStop.ReplaceAllString(x, "。")
	return strings.TrimSpace(x) + "\n"
}
