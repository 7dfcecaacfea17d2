package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	catalogLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[][{}:,;]`},
	})

	catalogParser = participle.MustBuild[Catalog](
		participle.Lexer(catalogLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
	)
)

// Catalog 是模板目录文件的根节点。
type Catalog struct {
	Pos       lexer.Position  `parser:"" json:"-"`
	Templates []*TemplateDecl `parser:"Newline* ( @@ Newline* )*"`
}

// TemplateDecl 描述一条 template <id> { ... } 声明。
type TemplateDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	ID      string         `parser:"'template' @Ident"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Entry 是声明体内的一条 key: value 赋值。
type Entry struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':' Newline*"`
	Value *Value         `parser:"@@"`
}

// Value 是字符串或字符串列表。
type Value struct {
	Str  *StringLiteral `parser:"  @String"`
	List *ListValue     `parser:"| @@"`
}

// ListValue 捕获 [ "a", "b" ] 形式的列表，允许用换行分隔元素。
type ListValue struct {
	Items []StringLiteral `parser:"'[' Newline* ( @String ( (',' | Newline+) Newline* @String )* )? Newline* ']'"`
}

// StringLiteral 在捕获时按 Go 语法反转义。
type StringLiteral string

// Capture 实现 participle.Capture。
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串捕获需要值")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return fmt.Errorf("反转义字符串 %s 失败: %w", values[0], err)
	}
	*s = StringLiteral(val)
	return nil
}

// Lookup 返回条目键对应的字符串值；列表值或键缺失时返回空串。
func (d *TemplateDecl) Lookup(key string) string {
	for _, e := range d.Entries {
		if e.Key == key && e.Value != nil && e.Value.Str != nil {
			return string(*e.Value.Str)
		}
	}
	return ""
}

// LookupList 返回条目键对应的列表值；字符串值或键缺失时返回 nil。
func (d *TemplateDecl) LookupList(key string) []string {
	for _, e := range d.Entries {
		if e.Key == key && e.Value != nil && e.Value.List != nil {
			out := make([]string, 0, len(e.Value.List.Items))
			for _, item := range e.Value.List.Items {
				out = append(out, string(item))
			}
			return out
		}
	}
	return nil
}

// Parse 从 io.Reader 解析模板目录。
func Parse(r io.Reader) (*Catalog, error) {
	return catalogParser.Parse("", r)
}

// ParseString 从字符串解析模板目录。
func ParseString(input string) (*Catalog, error) {
	return catalogParser.ParseString("", input)
}
