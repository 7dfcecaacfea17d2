package handwrite

import (
	"errors"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/wenshu/fontres"
	"github.com/ByLCY/wenshu/store"
)

func writeTestFont(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "GoRegular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("写入测试字体失败: %v", err)
	}
	return path
}

func TestProfileValidate(t *testing.T) {
	good := Profile{Font: "a.ttf", FontSize: 40, LineGap: 18, RotateMin: -2, RotateMax: 2, Jitter: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("合法档案不应报错: %v", err)
	}

	cases := []Profile{
		{FontSize: 40},
		{Font: "a.ttf", FontSize: 0},
		{Font: "a.ttf", FontSize: 40, LineGap: -1},
		{Font: "a.ttf", FontSize: 40, Jitter: -1},
		{Font: "a.ttf", FontSize: 40, RotateMin: 3, RotateMax: -3},
	}
	for i, p := range cases {
		if err := p.Validate(); err == nil {
			t.Errorf("用例 %d 应校验失败: %+v", i, p)
		}
	}
}

func TestTrainProfilePicksAndPersists(t *testing.T) {
	fontPath := writeTestFont(t)
	s := store.NewMemStore()
	res := &fontres.DirResolver{Dirs: []string{filepath.Dir(fontPath)}}
	rng := rand.New(rand.NewSource(7))

	p, err := TrainProfile(s, res, rng, nil)
	if err != nil {
		t.Fatalf("TrainProfile 失败: %v", err)
	}
	if p.Font != fontPath {
		t.Errorf("字体 = %q, 期望 %q", p.Font, fontPath)
	}
	if p.FontSize != 36 && p.FontSize != 40 && p.FontSize != 44 {
		t.Errorf("字号超出候选集: %d", p.FontSize)
	}
	if p.LineGap != 14 && p.LineGap != 18 && p.LineGap != 22 {
		t.Errorf("行距超出候选集: %d", p.LineGap)
	}
	if p.RotateMin != -2 || p.RotateMax != 2 {
		t.Errorf("旋转区间 = [%g, %g]", p.RotateMin, p.RotateMax)
	}
	if p.Jitter < 0 || p.Jitter > 2 {
		t.Errorf("抖动超出候选集: %d", p.Jitter)
	}

	blob, err := s.Load(ProfileKey)
	if err != nil || len(blob) == 0 {
		t.Fatalf("档案未持久化: blob=%q err=%v", blob, err)
	}
}

func TestTrainProfileNoFonts(t *testing.T) {
	s := store.NewMemStore()
	res := &fontres.DirResolver{Dirs: []string{t.TempDir()}}
	if _, err := TrainProfile(s, res, nil, nil); err != ErrFontUnavailable {
		t.Fatalf("err = %v, 期望 ErrFontUnavailable", err)
	}
}

func TestLoadProfileRoundTrip(t *testing.T) {
	fontPath := writeTestFont(t)
	s := store.NewMemStore()
	res := &fontres.DirResolver{Dirs: []string{filepath.Dir(fontPath)}}
	rng := rand.New(rand.NewSource(3))

	trained, err := TrainProfile(s, res, rng, nil)
	if err != nil {
		t.Fatalf("TrainProfile 失败: %v", err)
	}
	loaded, err := LoadProfile(s, res, rng, nil)
	if err != nil {
		t.Fatalf("LoadProfile 失败: %v", err)
	}
	if loaded != trained {
		t.Errorf("加载结果 = %+v, 期望 %+v", loaded, trained)
	}
}

func TestLoadProfileCorruptFallsBack(t *testing.T) {
	fontPath := writeTestFont(t)
	s := store.NewMemStore()
	if err := s.Save(ProfileKey, []byte("{坏档案")); err != nil {
		t.Fatal(err)
	}
	res := &fontres.DirResolver{Dirs: []string{filepath.Dir(fontPath)}}

	p, err := LoadProfile(s, res, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("损坏档案应退回重新合成: %v", err)
	}
	if p.Font != fontPath {
		t.Errorf("重新合成未选中可用字体: %q", p.Font)
	}
}

func TestLoadProfileMissingFontFileFallsBack(t *testing.T) {
	fontPath := writeTestFont(t)
	s := store.NewMemStore()
	stale := Profile{Font: filepath.Join(t.TempDir(), "gone.ttf"), FontSize: 40, LineGap: 18, RotateMin: -2, RotateMax: 2}
	blob := []byte(`{"font":"` + stale.Font + `","font_size":40,"line_gap":18,"rotate_min":-2,"rotate_max":2,"jitter":0}`)
	if err := s.Save(ProfileKey, blob); err != nil {
		t.Fatal(err)
	}
	res := &fontres.DirResolver{Dirs: []string{filepath.Dir(fontPath)}}

	p, err := LoadProfile(s, res, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("LoadProfile 失败: %v", err)
	}
	if p.Font != fontPath {
		t.Errorf("字体文件缺失时应重新合成, 得到 %q", p.Font)
	}
}

func TestRenderDimensions(t *testing.T) {
	fontPath := writeTestFont(t)
	p := Profile{Font: fontPath, FontSize: 40, LineGap: 18, RotateMin: -2, RotateMax: 2, Jitter: 1}
	syn := &Synthesizer{Rand: rand.New(rand.NewSource(42))}

	out := filepath.Join(t.TempDir(), "sub", "doc.png")
	text := "line one\nline two\n\nline three"
	got, err := syn.Render(text, p, out)
	if err != nil {
		t.Fatalf("Render 失败: %v", err)
	}
	if got != out {
		t.Errorf("返回路径 = %q, 期望 %q", got, out)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("解码 PNG 失败: %v", err)
	}
	// 空行被丢弃，有效行数为 3。
	wantHeight := 3*(40+18) + 40
	if cfg.Height != wantHeight {
		t.Errorf("高度 = %d, 期望 %d", cfg.Height, wantHeight)
	}
	if cfg.Width < 800 {
		t.Errorf("宽度 = %d, 至少应为 800", cfg.Width)
	}
}

func TestRenderDrawsInk(t *testing.T) {
	fontPath := writeTestFont(t)
	p := Profile{Font: fontPath, FontSize: 40, LineGap: 18}
	syn := &Synthesizer{Rand: rand.New(rand.NewSource(1))}

	out := filepath.Join(t.TempDir(), "ink.png")
	if _, err := syn.Render("hello world", p, out); err != nil {
		t.Fatalf("Render 失败: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if !hasDarkPixel(img) {
		t.Error("图像应包含非白色像素")
	}
}

func TestRenderBlankText(t *testing.T) {
	fontPath := writeTestFont(t)
	p := Profile{Font: fontPath, FontSize: 36, LineGap: 14}
	syn := &Synthesizer{Rand: rand.New(rand.NewSource(1))}

	out := filepath.Join(t.TempDir(), "blank.png")
	if _, err := syn.Render("   \n\n", p, out); err != nil {
		t.Fatalf("空文本应渲染出单行空白画布: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != (36+14)+40 {
		t.Errorf("高度 = %d, 期望 %d", cfg.Height, (36+14)+40)
	}
}

func TestRenderMissingFont(t *testing.T) {
	p := Profile{Font: filepath.Join(t.TempDir(), "missing.ttf"), FontSize: 40, LineGap: 18}
	syn := &Synthesizer{}
	_, err := syn.Render("文本", p, filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, ErrFontUnavailable) {
		t.Fatalf("err = %v, 期望 ErrFontUnavailable", err)
	}
}

func hasDarkPixel(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r < 0xC000 || g < 0xC000 || bl < 0xC000 {
				return true
			}
		}
	}
	return false
}
