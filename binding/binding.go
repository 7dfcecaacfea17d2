package binding

import "regexp"

var fieldPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Fill 将正文模式中的 {字段名} 占位符替换为 values 中的值。
// 替换为单趟扫描：替换进去的值不会被再次解释，值中出现的花括号原样保留。
// values 中缺失的字段替换为空串，占位符永远不会残留在输出里。
func Fill(pattern string, values map[string]string) string {
	return fieldPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		name := match[1 : len(match)-1]
		return values[name]
	})
}

// Placeholders 返回正文模式中出现的全部占位符字段名，按出现顺序去重。
func Placeholders(pattern string) []string {
	seen := map[string]bool{}
	var names []string
	for _, groups := range fieldPattern.FindAllStringSubmatch(pattern, -1) {
		name := groups[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
