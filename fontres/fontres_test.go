package fontres

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, goregular.TTF, 0o644); err != nil {
		t.Fatalf("写入字体文件失败: %v", err)
	}
	return p
}

func TestAvailableScansAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "b.ttf")
	writeFont(t, dir, "a.otf")
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	r := NewDirResolver(dir)
	got := r.Available()
	if len(got) != 2 {
		t.Fatalf("应只收集字体文件，实际 %v", got)
	}
	if filepath.Base(got[0]) != "a.otf" || filepath.Base(got[1]) != "b.ttf" {
		t.Fatalf("结果应排序: %v", got)
	}
}

func TestResolveAlias(t *testing.T) {
	dir := t.TempDir()
	want := writeFont(t, dir, "MaShanZheng-Regular.ttf")

	r := NewDirResolver(dir)
	got, ok := r.Resolve("手写-马善政")
	if !ok || got != want {
		t.Fatalf("别名解析失败: got=%q ok=%v", got, ok)
	}
}

func TestResolveAliasPriority(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "simhei.ttf")
	want := writeFont(t, dir, "simsun.ttc")

	r := NewDirResolver(dir)
	got, ok := r.Resolve("宋体")
	if !ok || got != want {
		t.Fatalf("应按候选优先级解析: got=%q ok=%v", got, ok)
	}
}

func TestResolveAliasFallbackCandidate(t *testing.T) {
	dir := t.TempDir()
	want := writeFont(t, dir, "simhei.ttf")

	r := NewDirResolver(dir)
	got, ok := r.Resolve("宋体")
	if !ok || got != want {
		t.Fatalf("首选缺失时应回退到后续候选: got=%q ok=%v", got, ok)
	}
}

func TestResolveDirectFilename(t *testing.T) {
	dir := t.TempDir()
	want := writeFont(t, dir, "custom.ttf")

	r := NewDirResolver(dir)
	if got, ok := r.Resolve("custom.ttf"); !ok || got != want {
		t.Fatalf("直接文件名解析失败: got=%q ok=%v", got, ok)
	}
	if got, ok := r.Resolve("custom"); !ok || got != want {
		t.Fatalf("省略扩展名解析失败: got=%q ok=%v", got, ok)
	}
}

func TestResolveMissing(t *testing.T) {
	r := NewDirResolver(t.TempDir())
	if _, ok := r.Resolve("楷体"); ok {
		t.Fatalf("目录为空时不应解析成功")
	}
	if _, ok := r.Resolve(""); ok {
		t.Fatalf("空字体名不应解析成功")
	}
}
