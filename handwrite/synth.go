package handwrite

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	minWidth   = 800
	topMargin  = 20
	leftMargin = 20
	// 中文字形近似等宽，按字号的 0.7 估算单字占宽。
	charWidthRatio = 0.7
)

// Synthesizer 按手写档案把纯文本画成 PNG。
// Rand 为 nil 时使用时间种子，注入固定种子可获得可复现的输出。
type Synthesizer struct {
	Rand *rand.Rand
}

// Render 把 text 逐行绘制到 outPath 指定的 PNG 文件，返回最终路径。
// 每行独立施加位移抖动与微小旋转，模拟手写的不整齐感。
func (s *Synthesizer) Render(text string, p Profile, outPath string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("手写档案无效: %w", err)
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	data, err := os.ReadFile(p.Font)
	if err != nil {
		return "", fmt.Errorf("%w: 读取字体 %s: %v", ErrFontUnavailable, p.Font, err)
	}
	ttf, err := truetype.Parse(data)
	if err != nil {
		return "", fmt.Errorf("%w: 解析字体 %s: %v", ErrFontUnavailable, p.Font, err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(p.FontSize),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	lines := splitLines(text)

	maxChars := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > maxChars {
			maxChars = n
		}
	}
	width := int(float64(maxChars) * float64(p.FontSize) * charWidthRatio)
	if width < minWidth {
		width = minWidth
	}
	height := len(lines)*(p.FontSize+p.LineGap) + 2*topMargin

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)

	y := topMargin
	for _, line := range lines {
		dy := y
		if p.Jitter > 0 {
			dy += rng.Intn(2*p.Jitter+1) - p.Jitter
		}
		dx := leftMargin
		if p.Jitter > 0 {
			dx += rng.Intn(p.Jitter + 1)
		}
		angle := p.RotateMin + rng.Float64()*(p.RotateMax-p.RotateMin)

		dc.Push()
		dc.RotateAbout(gg.Radians(angle), float64(width)/2, float64(dy)+float64(p.FontSize)/2)
		dc.SetRGB(0, 0, 0)
		dc.DrawString(line, float64(dx), float64(dy+p.FontSize))
		dc.Pop()

		y += p.FontSize + p.LineGap
	}

	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer out.Close()
	if err := dc.EncodePNG(out); err != nil {
		return "", fmt.Errorf("%w: 编码 PNG: %v", ErrRenderingUnavailable, err)
	}
	return outPath, nil
}

// splitLines 拆分文本为绘制行，丢弃纯空白行；
// 全空文本退化为一条空行，保证画布高度有效。
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{" "}
	}
	return lines
}
