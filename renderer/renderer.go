package renderer

// Document 是一次排版输出的输入：标题、已规范化的正文与字体参数。
// FontSize 单位为 pt，LineHeight 为相对字号的行高倍数。
type Document struct {
	Title      string
	Body       string
	FontPath   string
	FontSize   float64
	LineHeight float64
}

// Renderer 将文档输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}
