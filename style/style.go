// Package style 按语体对渲染后的文书做有序的模式改写，并注入语体前导句。
package style

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ByLCY/wenshu/template"
)

// 语体标识。未列出的标识原样透传，不视为错误。
const (
	Formal  = "formal"
	Neutral = "neutral"
	Strict  = "strict"
)

// rule 是一条全文改写规则。规则按声明顺序执行：
// 后面的规则可能依赖前面规则产生的文本形态，负向环视护栏
// （如 (?<!诉讼)请求(?!：)）防止已改写的词被二次命中。
// 规则顺序与护栏语义是固定契约，调整任一项都会改变输出。
type rule struct {
	re   *regexp2.Regexp
	repl string
}

func mustRule(pattern, repl string) rule {
	return rule{re: regexp2.MustCompile(pattern, 0), repl: repl}
}

var formalRules = []rule{
	mustRule(`(?<!诉讼)请求(?!：)`, "恳请"),
	mustRule(`依据`, "依照"),
	mustRule(`提交`, "谨此提交"),
	mustRule(`违约`, "违约行为"),
	mustRule(`处理`, "审理处理"),
}

var strictRules = []rule{
	mustRule(`(?<!诉讼)请求(?!：)`, "特此请求"),
	mustRule(`依据`, "依法律规定"),
	mustRule(`事实与理由：`, "事实与法律依据："),
	mustRule(`诉讼请求：`, "请求事项："),
	mustRule(`委托事项：`, "委托事宜："),
	mustRule(`请假事由：`, "事由："),
}

// ruleSets 枚举已识别的语体。neutral 不做任何改写。
var ruleSets = map[string][]rule{
	Formal:  formalRules,
	Neutral: nil,
	Strict:  strictRules,
}

// 前导句中引用的短语从改写后的正文中提取，提取失败用兜底短语。
var (
	causePattern       = regexp.MustCompile(`案由：(.+?)。`)
	leaveReasonPattern = regexp.MustCompile(`请假事由：(.+?)\n`)
)

func extract(re *regexp.Regexp, text, fallback string) string {
	if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
		return m[1]
	}
	return fallback
}

// preambles 按 (模板 id, 语体) 给出前导句。
// 这里显式以模板 id 为键，而不是在正文里嗅探标题子串。
var preambles = map[string]map[string]func(text string) string{
	"complaint": {
		Formal: func(text string) string {
			return "兹因" + extract(causePattern, text, "相关纠纷") + "，谨此呈请贵院审理。"
		},
		Strict: func(string) string { return "经查明，现依法提出如下请求。" },
	},
	"contract": {
		Formal: func(string) string { return "为明确双方权利义务，特订立本协议。" },
		Strict: func(string) string { return "为规范履约，双方特约如下条款。" },
	},
	"power_of_attorney": {
		Formal: func(string) string { return "兹委托受托人依法办理相关事宜。" },
		Strict: func(string) string { return "特此授权，受托人按本委托行事。" },
	},
	"leave": {
		Formal: func(text string) string {
			return "兹因" + extract(leaveReasonPattern, text, "个人事务") + "需处理，谨此申请请假。"
		},
		Strict: func(string) string { return "现依制度申请请假如下。" },
	},
}

// Apply 对渲染后的正文应用语体改写与前导句注入。
// 改写先于注入执行；未识别的语体原样返回。
func Apply(text, register string, tpl template.Template) string {
	rules, ok := ruleSets[register]
	if !ok {
		return text
	}
	for _, r := range rules {
		if out, err := r.re.Replace(text, r.repl, -1, -1); err == nil {
			text = out
		}
	}
	if byRegister, ok := preambles[tpl.ID]; ok {
		if build, ok := byRegister[register]; ok {
			if pre := build(text); pre != "" {
				text = injectAfterTitle(text, tpl.Name, pre)
			}
		}
	}
	return text
}

// injectAfterTitle 把前导句作为独立段落插入到标题行之后。
// 标题行指正文中第一个与模板名相同的整行；找不到则不注入。
func injectAfterTitle(text, title, preamble string) string {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(title) + `[ \t]*\n`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := strings.TrimLeft(text[loc[1]:], "\n")
	return text[:loc[1]] + "\n" + preamble + "\n\n" + rest
}
