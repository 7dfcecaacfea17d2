package generator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/wenshu/fontres"
	"github.com/ByLCY/wenshu/store"
	"github.com/ByLCY/wenshu/template"
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "GoRegular.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("写入测试字体失败: %v", err)
	}
	return New(store.NewMemStore(), fontres.NewDirResolver(dir), nil)
}

func TestGenerateLeaveFormal(t *testing.T) {
	g := newGenerator(t)
	text, err := g.Generate("leave", map[string]string{
		"申请人姓名": "张三",
		"部门":    "研发部",
	}, "formal")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}

	for _, want := range []string{"张三", "研发部", "事假", "请假天数：1 天", "谨此申请请假。"} {
		if !strings.Contains(text, want) {
			t.Errorf("正文缺少 %q:\n%s", want, text)
		}
	}
	if strings.ContainsAny(text, "{}") {
		t.Errorf("正文残留占位符:\n%s", text)
	}
}

func TestGenerateAllTemplatesAllStyles(t *testing.T) {
	g := newGenerator(t)
	for _, tpl := range g.ListTemplates() {
		for _, register := range tpl.Styles {
			text, err := g.Generate(tpl.ID, nil, register)
			if err != nil {
				t.Errorf("%s/%s: %v", tpl.ID, register, err)
				continue
			}
			if strings.TrimSpace(text) == "" {
				t.Errorf("%s/%s: 正文为空", tpl.ID, register)
			}
			if strings.ContainsAny(text, "{}") {
				t.Errorf("%s/%s: 正文残留占位符:\n%s", tpl.ID, register, text)
			}
		}
	}
}

func TestGenerateUnknownTemplate(t *testing.T) {
	g := newGenerator(t)
	_, err := g.Generate("不存在的模板", nil, "neutral")
	if !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("err = %v, 期望 ErrNotFound", err)
	}
}

func TestGenerateUndeclaredStyleFallsThrough(t *testing.T) {
	g := newGenerator(t)
	// 合同模板未声明 strict，应按原文输出而不是报错
	strict, err := g.Generate("contract", nil, "strict")
	if err != nil {
		t.Fatalf("未声明的语体不应报错: %v", err)
	}
	neutral, err := g.Generate("contract", nil, "neutral")
	if err != nil {
		t.Fatal(err)
	}
	if strict != neutral {
		t.Error("未声明的语体应等价于不做改写")
	}
}

func TestGenerateEmptyRegisterDefaultsToNeutral(t *testing.T) {
	g := newGenerator(t)
	plain, err := g.Generate("leave", nil, "")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	neutral, err := g.Generate("leave", nil, "neutral")
	if err != nil {
		t.Fatal(err)
	}
	if plain != neutral {
		t.Error("空语体应等价于 neutral")
	}
}

func TestGenerateRecordsHistory(t *testing.T) {
	g := newGenerator(t)
	if _, err := g.Generate("leave", map[string]string{"申请人姓名": "李四"}, "neutral"); err != nil {
		t.Fatal(err)
	}
	entries := g.History.List()
	if len(entries) != 1 {
		t.Fatalf("历史条数 = %d, 期望 1", len(entries))
	}
	if entries[0].TemplateID != "leave" || entries[0].Values["申请人姓名"] != "李四" {
		t.Errorf("历史记录不完整: %+v", entries[0])
	}
}

func TestRenderImageWritesPNG(t *testing.T) {
	g := newGenerator(t)
	out := filepath.Join(t.TempDir(), "leave.png")
	text, path, err := g.RenderImage("leave", map[string]string{"申请人姓名": "王五"}, "neutral", out)
	if err != nil {
		t.Fatalf("RenderImage 失败: %v", err)
	}
	if path != out {
		t.Errorf("路径 = %q, 期望 %q", path, out)
	}
	if !strings.Contains(text, "王五") {
		t.Errorf("正文缺少姓名:\n%s", text)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("输出不是 PNG")
	}

	entry, ok := g.History.Latest("leave")
	if !ok || entry.ImagePath != out {
		t.Errorf("历史应记录图片路径: %+v", entry)
	}
}

func TestRenderPDF(t *testing.T) {
	g := newGenerator(t)
	data, err := g.RenderPDF("leave", nil, "neutral", "")
	if err != nil {
		t.Fatalf("RenderPDF 失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("输出不是 PDF")
	}
}

func TestFieldsOf(t *testing.T) {
	g := newGenerator(t)
	fields, err := g.FieldsOf("leave")
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) == 0 || fields[0] != "申请人姓名" {
		t.Errorf("字段顺序不符: %v", fields)
	}
	if _, err := g.FieldsOf("不存在"); !errors.Is(err, template.ErrNotFound) {
		t.Errorf("err = %v, 期望 ErrNotFound", err)
	}
}

func TestTrainingRoundTrip(t *testing.T) {
	g := newGenerator(t)
	for i := 0; i < 3; i++ {
		if err := g.RecordTraining("leave", map[string]string{"请假类型": "年假"}); err != nil {
			t.Fatal(err)
		}
	}
	learned, err := g.RecomputeDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if learned["leave"]["请假类型"] != "年假" {
		t.Errorf("学习默认值 = %v", learned["leave"])
	}

	text, err := g.Generate("leave", nil, "neutral")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "年假") {
		t.Errorf("生成应使用学习默认值:\n%s", text)
	}
}

func TestSynthesizeTraining(t *testing.T) {
	g := newGenerator(t)
	learned, err := g.SynthesizeTraining(2)
	if err != nil {
		t.Fatalf("SynthesizeTraining 失败: %v", err)
	}
	if len(learned) == 0 {
		t.Fatal("合成训练后应有学习默认值")
	}
	if _, ok := learned["leave"]; !ok {
		t.Error("合成结果缺少 leave 模板")
	}
}

func TestStripTitleLine(t *testing.T) {
	got := stripTitleLine("请假申请\n\n正文", "请假申请")
	if got != "正文" {
		t.Errorf("stripTitleLine = %q", got)
	}
	if got := stripTitleLine("无标题正文", "请假申请"); got != "无标题正文" {
		t.Errorf("无标题时应原样返回: %q", got)
	}
}
