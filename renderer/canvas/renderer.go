package canvasrenderer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/wenshu/renderer"
)

// 页面参数均为毫米（mm），A4 纵向。
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	pageMargin = 20.0

	defaultFontSize   = 12.0
	defaultLineHeight = 1.6
	titleScale        = 1.5

	ptToMm = 0.352777
)

// Renderer 通过 github.com/tdewolff/canvas 把文档排版为 PDF。
type Renderer struct {
	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建 PDF 渲染器，字体族按路径缓存。
func NewRenderer() *Renderer {
	return &Renderer{families: map[string]*canvas.FontFamily{}}
}

type pageLine struct {
	content string
	face    *canvas.FontFace
	height  float64
	align   canvas.TextAlign
}

// Render 渲染为 PDF 字节切片。正文按显式换行分段，
// 段内按内容宽度贪心折行，超出版心高度时自动分页。
func (r *Renderer) Render(doc *renderer.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染文档为空")
	}
	if doc.FontPath == "" {
		return nil, fmt.Errorf("文档缺少字体路径")
	}
	size := doc.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	factor := doc.LineHeight
	if factor <= 0 {
		factor = defaultLineHeight
	}

	family, err := r.ensureFamily(doc.FontPath)
	if err != nil {
		return nil, err
	}
	bodyFace := family.Face(size, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	titleFace := family.Face(size*titleScale, canvas.Black, canvas.FontRegular, canvas.FontNormal)

	contentWidth := pageWidth - 2*pageMargin
	bodyLineH := toMm(size) * factor
	titleLineH := toMm(size*titleScale) * factor

	var lines []pageLine
	if strings.TrimSpace(doc.Title) != "" {
		lines = append(lines,
			pageLine{content: strings.TrimSpace(doc.Title), face: titleFace, height: titleLineH, align: canvas.Center},
			pageLine{height: bodyLineH},
		)
	}
	for _, para := range strings.Split(doc.Body, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, pageLine{height: bodyLineH})
			continue
		}
		for _, wrapped := range wrapRunes(para, contentWidth, bodyFace) {
			lines = append(lines, pageLine{content: wrapped, face: bodyFace, height: bodyLineH, align: canvas.Left})
		}
	}
	if len(lines) == 0 {
		lines = []pageLine{{height: bodyLineH}}
	}

	pages := paginate(lines, pageHeight-2*pageMargin)

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageWidth, pageHeight, nil)
	writer.SetInfo(doc.Title, "", "", "", "")
	for i, page := range pages {
		if i > 0 {
			writer.NewPage(pageWidth, pageHeight)
		}
		c := canvas.New(pageWidth, pageHeight)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标以左上角为原点

		y := pageMargin
		for _, line := range page {
			if line.content != "" {
				anchorX := pageMargin
				if line.align == canvas.Center {
					anchorX = pageWidth / 2
				}
				textLine := canvas.NewTextLine(line.face, line.content, line.align)
				baseline := y + line.face.Metrics().Ascent
				ctx.DrawText(anchorX, baseline, textLine)
			}
			y += line.height
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) ensureFamily(path string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[path]; ok {
		return family, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	family := canvas.NewFontFamily(filepath.Base(path))
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", path, err)
	}
	r.families[path] = family
	return family, nil
}

// wrapRunes 逐字贪心折行。中文正文没有词边界，按字宽累计即可。
func wrapRunes(text string, limit float64, face *canvas.FontFace) []string {
	var lines []string
	var builder strings.Builder
	width := 0.0
	for _, ch := range text {
		if ch == '\r' {
			continue
		}
		w := face.TextWidth(string(ch))
		if width > 0 && width+w > limit {
			lines = append(lines, builder.String())
			builder.Reset()
			width = 0
		}
		builder.WriteRune(ch)
		width += w
	}
	if builder.Len() > 0 {
		lines = append(lines, builder.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func paginate(lines []pageLine, usable float64) [][]pageLine {
	var pages [][]pageLine
	var current []pageLine
	used := 0.0
	for _, line := range lines {
		if len(current) > 0 && used+line.height > usable {
			pages = append(pages, current)
			current = nil
			used = 0
		}
		current = append(current, line)
		used += line.height
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	if len(pages) == 0 {
		pages = [][]pageLine{{}}
	}
	return pages
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * ptToMm }
