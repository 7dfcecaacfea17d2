// Package template 提供不可变的文书模板目录。
// 模板从内嵌的目录 DSL 解析一次，进程生命周期内内容不变。
package template

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/ByLCY/wenshu/binding"
	"github.com/ByLCY/wenshu/dsl"
)

//go:embed catalog.dsl
var catalogSource string

// ErrNotFound 表示模板 id 不存在。
var ErrNotFound = errors.New("模板不存在")

// Template 是一份文书模板：字段顺序即呈现顺序，正文中以 {字段名} 标记空位。
type Template struct {
	ID          string
	Name        string
	Description string
	Fields      []string
	Body        string
	Styles      []string
}

// SupportsStyle 报告模板是否声明了指定风格。
func (t Template) SupportsStyle(style string) bool {
	for _, s := range t.Styles {
		if s == style {
			return true
		}
	}
	return false
}

// HasField 报告字段是否在模板中声明。
func (t Template) HasField(name string) bool {
	for _, f := range t.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Registry 保存有序的模板集合，构造后只读。
type Registry struct {
	ordered []Template
	byID    map[string]int
}

// NewRegistry 从目录 AST 构造注册表并做完整性校验。
func NewRegistry(cat *dsl.Catalog) (*Registry, error) {
	r := &Registry{byID: map[string]int{}}
	for _, decl := range cat.Templates {
		t := Template{
			ID:          decl.ID,
			Name:        decl.Lookup("name"),
			Description: decl.Lookup("description"),
			Fields:      decl.LookupList("fields"),
			Body:        decl.Lookup("body"),
			Styles:      decl.LookupList("styles"),
		}
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("模板 id 重复：%s", t.ID)
		}
		r.byID[t.ID] = len(r.ordered)
		r.ordered = append(r.ordered, t)
	}
	return r, nil
}

func validate(t Template) error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("模板缺少 id 或 name：%+v", t)
	}
	if t.Body == "" {
		return fmt.Errorf("模板 %s 缺少正文", t.ID)
	}
	seen := map[string]bool{}
	for _, f := range t.Fields {
		if f == "" {
			return fmt.Errorf("模板 %s 含空字段名", t.ID)
		}
		if seen[f] {
			return fmt.Errorf("模板 %s 字段重复：%s", t.ID, f)
		}
		seen[f] = true
	}
	for _, name := range binding.Placeholders(t.Body) {
		if !seen[name] {
			return fmt.Errorf("模板 %s 正文引用了未声明字段：{%s}", t.ID, name)
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default 返回内嵌目录构成的注册表。
// 内嵌目录是受信的作者内容，解析失败属于编程错误，直接 panic。
func Default() *Registry {
	defaultOnce.Do(func() {
		cat, err := dsl.ParseString(catalogSource)
		if err != nil {
			panic(fmt.Sprintf("解析内置模板目录失败: %v", err))
		}
		reg, err := NewRegistry(cat)
		if err != nil {
			panic(fmt.Sprintf("内置模板目录校验失败: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// List 返回全部模板（按目录声明顺序的副本）。
func (r *Registry) List() []Template {
	out := make([]Template, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Find 按 id 查找模板。
func (r *Registry) Find(id string) (Template, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.ordered[idx], nil
}

// FieldsOf 返回模板声明的字段顺序，id 未知时返回 nil。
func (r *Registry) FieldsOf(id string) []string {
	idx, ok := r.byID[id]
	if !ok {
		return nil
	}
	fields := make([]string, len(r.ordered[idx].Fields))
	copy(fields, r.ordered[idx].Fields)
	return fields
}
