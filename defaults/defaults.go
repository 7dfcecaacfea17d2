// Package defaults 在字段替换之前合并用户输入、学习默认值与模板级回退规则。
package defaults

import (
	"encoding/json"
	"time"

	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/store"
	"github.com/ByLCY/wenshu/template"
)

// LearnedKey 是学习默认值快照在持久化存储中的键。
const LearnedKey = "learned_defaults"

// DateLayout 是日期字段的默认格式。
const DateLayout = "2006年01月02日"

// dateFields 列出按日期语义兜底的字段名。
var dateFields = map[string]bool{
	"日期":   true,
	"申请日期": true,
}

// fieldRule 是"若字段仍为空则计算填充"的一条数据化规则。
// Fill 可以读取当前已解析的字段值，返回空串表示本条规则放弃填充。
type fieldRule struct {
	Field string
	Fill  func(resolved map[string]string) string
}

func constant(v string) func(map[string]string) string {
	return func(map[string]string) string { return v }
}

// templateRules 按模板 id 给出有序的回退规则表。
// 规则只在目标字段为空时生效，永远不覆盖用户或学习值。
var templateRules = map[string][]fieldRule{
	"complaint": {
		{Field: "法院名称", Fill: constant("××人民法院")},
		{Field: "诉讼请求", Fill: constant("请求依法判令被告承担相应民事责任")},
		{Field: "事实与理由", Fill: func(r map[string]string) string {
			if cause := r["案由"]; cause != "" {
				return "因" + cause + "引发纠纷，现依据相关法律提出诉讼"
			}
			return ""
		}},
		{Field: "原告性别", Fill: constant("男")},
	},
	"contract": {
		{Field: "合同标题", Fill: func(r map[string]string) string {
			subject := r["合同标的"]
			if subject == "" {
				subject = "合作事宜"
			}
			return "关于" + subject + "之合同协议书"
		}},
		{Field: "争议解决", Fill: constant("双方协商不成的，提交甲方所在地人民法院处理")},
		{Field: "违约责任", Fill: constant("违约方应承担由此产生的全部损失")},
	},
	"power_of_attorney": {
		{Field: "委托权限", Fill: constant("代为签署相关文件、递交材料、领取文书")},
		{Field: "委托期限", Fill: constant("自本委托书出具之日起至事项办理完毕")},
	},
	"leave": {
		{Field: "请假类型", Fill: constant("事假")},
		{Field: "审批人", Fill: constant("直属主管")},
		{Field: "请假事由", Fill: constant("因个人事务需处理，特此请假")},
		{Field: "请假天数", Fill: constant("1")},
	},
	"meeting_minutes": {
		{Field: "后续行动", Fill: constant("责任人明确，按计划推进，定期复盘")},
	},
	"recommendation_letter": {
		{Field: "结语", Fill: constant("特此推荐，敬请审阅")},
	},
	"internship_application": {
		{Field: "申请理由", Fill: constant("希望在实际场景中提升专业能力")},
		{Field: "实习时间", Fill: constant("暑期两个月")},
	},
	"research_proposal": {
		{Field: "时间安排", Fill: constant("分阶段实施：调研-设计-实验-总结")},
	},
	"project_proposal": {
		{Field: "预期效益", Fill: constant("提升效率与质量，形成可复制经验")},
	},
	"data_analysis_report": {
		{Field: "评估指标", Fill: constant("MAE、RMSE、AUC、F1等依任务选择")},
	},
}

// Engine 是默认值解析引擎。Store 与 Now 均可为空：
// Store 为空时跳过学习默认值，Now 为空时使用 time.Now。
type Engine struct {
	Store store.Store
	Now   func() time.Time
	Log   *logger.Logger
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) log() *logger.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logger.Nop()
}

// Resolve 返回覆盖模板全部声明字段的解析结果，未能填充的字段为空串。
// 解析顺序固定：日期兜底 → 学习默认值 → 模板回退规则；
// 后续步骤只填充仍为空的字段，非空的用户输入永远保留。
func (e *Engine) Resolve(tpl template.Template, raw map[string]string) map[string]string {
	resolved := make(map[string]string, len(tpl.Fields))
	for k, v := range raw {
		resolved[k] = v
	}

	today := e.now().Format(DateLayout)
	for _, f := range tpl.Fields {
		if dateFields[f] && resolved[f] == "" {
			resolved[f] = today
		}
	}

	learned := e.learnedFor(tpl.ID)
	for _, f := range tpl.Fields {
		if resolved[f] != "" {
			continue
		}
		if v, ok := learned[f]; ok && v != "" {
			resolved[f] = v
		}
	}

	for _, rule := range templateRules[tpl.ID] {
		if !tpl.HasField(rule.Field) || resolved[rule.Field] != "" {
			continue
		}
		if v := rule.Fill(resolved); v != "" {
			resolved[rule.Field] = v
		}
	}

	for _, f := range tpl.Fields {
		if _, ok := resolved[f]; !ok {
			resolved[f] = ""
		}
	}
	return resolved
}

// learnedFor 读取模板的学习默认值，读取失败降级为无默认值。
func (e *Engine) learnedFor(templateID string) map[string]string {
	if e.Store == nil {
		return nil
	}
	blob, err := e.Store.Load(LearnedKey)
	if err != nil {
		e.log().Warn("读取学习默认值失败，按无默认值处理", "error", err)
		return nil
	}
	if len(blob) == 0 {
		return nil
	}
	var snapshot map[string]map[string]string
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		e.log().Warn("学习默认值快照损坏，按无默认值处理", "error", err)
		return nil
	}
	return snapshot[templateID]
}
