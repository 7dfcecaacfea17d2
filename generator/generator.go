// Package generator 把模板、默认值、语体与渲染串成完整的生成流水线。
package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ByLCY/wenshu/binding"
	"github.com/ByLCY/wenshu/defaults"
	"github.com/ByLCY/wenshu/fontres"
	"github.com/ByLCY/wenshu/handwrite"
	"github.com/ByLCY/wenshu/history"
	"github.com/ByLCY/wenshu/learn"
	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/renderer"
	canvasrenderer "github.com/ByLCY/wenshu/renderer/canvas"
	"github.com/ByLCY/wenshu/store"
	"github.com/ByLCY/wenshu/style"
	"github.com/ByLCY/wenshu/template"
)

// Generator 聚合各子系统。字段在构造后不应再修改。
type Generator struct {
	Registry *template.Registry
	Defaults *defaults.Engine
	Trainer  *learn.Trainer
	History  *history.Recorder
	Fonts    fontres.Resolver
	Store    store.Store
	PDF      renderer.Renderer
	Synth    *handwrite.Synthesizer
	Rand     *rand.Rand
	Log      *logger.Logger
}

// New 以默认模板目录装配生成器。
func New(s store.Store, fonts fontres.Resolver, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	reg := template.Default()
	return &Generator{
		Registry: reg,
		Defaults: &defaults.Engine{Store: s, Log: log},
		Trainer:  &learn.Trainer{Registry: reg, Store: s, Log: log},
		History:  &history.Recorder{Store: s, Log: log},
		Fonts:    fonts,
		Store:    s,
		PDF:      canvasrenderer.NewRenderer(),
		Synth:    &handwrite.Synthesizer{},
		Log:      log,
	}
}

func (g *Generator) log() *logger.Logger {
	if g.Log != nil {
		return g.Log
	}
	return logger.Nop()
}

// compose 执行文本流水线：默认值解析、字段绑定、语体改写、规范化。
func (g *Generator) compose(templateID string, values map[string]string, register string) (template.Template, string, error) {
	tpl, err := g.Registry.Find(templateID)
	if err != nil {
		return template.Template{}, "", err
	}
	if register == "" {
		register = style.Neutral
	}

	resolved := g.Defaults.Resolve(tpl, values)
	text := binding.Fill(tpl.Body, resolved)
	// 模板未声明的语体按原文输出，语体阶段从不报错
	if tpl.SupportsStyle(register) {
		text = style.Apply(text, register, tpl)
	} else {
		g.log().Warn("模板未声明该语体，跳过语体改写", "template", tpl.ID, "style", register)
	}
	text = style.Normalize(text)
	return tpl, text, nil
}

// Generate 渲染纯文本文书并记录生成历史。
// 历史写入失败只记日志，不影响返回结果。
func (g *Generator) Generate(templateID string, values map[string]string, register string) (string, error) {
	_, text, err := g.compose(templateID, values, register)
	if err != nil {
		return "", err
	}
	g.record(templateID, values, text, "")
	return text, nil
}

// RenderImage 生成文书并渲染为模拟手写的 PNG，返回正文与图片路径。
// 手写档案缺失或失效时会自动重新合成。
func (g *Generator) RenderImage(templateID string, values map[string]string, register, outPath string) (string, string, error) {
	_, text, err := g.compose(templateID, values, register)
	if err != nil {
		return "", "", err
	}
	profile, err := handwrite.LoadProfile(g.Store, g.Fonts, g.Rand, g.Log)
	if err != nil {
		return "", "", err
	}
	path, err := g.Synth.Render(text, profile, outPath)
	if err != nil {
		return "", "", err
	}
	g.record(templateID, values, text, path)
	return text, path, nil
}

// RenderPDF 生成文书并排版为 PDF 字节切片。
// fontLabel 为空时使用第一款可用字体。
func (g *Generator) RenderPDF(templateID string, values map[string]string, register, fontLabel string) ([]byte, error) {
	tpl, text, err := g.compose(templateID, values, register)
	if err != nil {
		return nil, err
	}

	fontPath := ""
	if fontLabel != "" {
		p, ok := g.Fonts.Resolve(fontLabel)
		if !ok {
			return nil, fmt.Errorf("%w: %s", handwrite.ErrFontUnavailable, fontLabel)
		}
		fontPath = p
	} else {
		available := g.Fonts.Available()
		if len(available) == 0 {
			return nil, handwrite.ErrFontUnavailable
		}
		fontPath = available[0]
	}

	doc := &renderer.Document{
		Title:    tpl.Name,
		Body:     stripTitleLine(text, tpl.Name),
		FontPath: fontPath,
	}
	data, err := g.PDF.Render(doc)
	if err != nil {
		return nil, err
	}
	g.record(templateID, values, text, "")
	return data, nil
}

func (g *Generator) record(templateID string, values map[string]string, text, imagePath string) {
	if g.History == nil {
		return
	}
	if _, err := g.History.Append(templateID, values, text, imagePath); err != nil {
		g.log().Warn("写入生成历史失败", "template", templateID, "error", err)
	}
}

// ListTemplates 返回全部模板。
func (g *Generator) ListTemplates() []template.Template {
	return g.Registry.List()
}

// FieldsOf 返回模板声明的字段顺序。
func (g *Generator) FieldsOf(templateID string) ([]string, error) {
	if _, err := g.Registry.Find(templateID); err != nil {
		return nil, err
	}
	return g.Registry.FieldsOf(templateID), nil
}

// RecordTraining 记录一次训练提交。
func (g *Generator) RecordTraining(templateID string, values map[string]string) error {
	return g.Trainer.Record(templateID, values)
}

// RecomputeDefaults 重算学习默认值快照并返回结果。
func (g *Generator) RecomputeDefaults() (map[string]map[string]string, error) {
	return g.Trainer.Recompute()
}

// SynthesizeTraining 为每个模板合成指定条数的训练样本并重算默认值。
func (g *Generator) SynthesizeTraining(perTemplate int) (map[string]map[string]string, error) {
	return g.Trainer.Synthesize(perTemplate, g.Rand)
}

// stripTitleLine 去掉正文中与标题相同的首行，避免 PDF 排版时重复。
func stripTitleLine(text, title string) string {
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) == 2 && strings.TrimSpace(lines[0]) == title {
		return strings.TrimLeft(lines[1], "\n")
	}
	if len(lines) == 1 && strings.TrimSpace(lines[0]) == title {
		return ""
	}
	return text
}
