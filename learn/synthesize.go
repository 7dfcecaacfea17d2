package learn

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ByLCY/wenshu/defaults"
)

// 合成数据的固定取值池，用于快速填充训练日志。
var (
	namePool = []string{"张三", "李四", "王五", "赵六", "孙七", "周八", "吴九", "郑十", "钱一", "刘二"}
	orgPool  = []string{"××大学", "××公司", "××研究院", "××实验室"}

	nameFields = map[string]bool{
		"原告姓名": true, "被告姓名": true, "委托人姓名": true, "受托人姓名": true,
		"申请人姓名": true, "负责人": true, "推荐人姓名": true, "被推荐人姓名": true,
	}
	orgFields = map[string]bool{
		"甲方名称": true, "乙方名称": true, "推荐人单位": true,
	}

	textPools = map[string][]string{
		"案由":    {"合同纠纷", "劳动争议", "侵权纠纷"},
		"诉讼请求":  {"请求承担损失", "请求返还款项", "请求解除合同"},
		"请假类型":  {"事假", "病假", "年休假"},
		"部门":    {"研发部", "市场部", "人事部"},
		"会议地点":  {"会议室A", "会议室B", "线上会议"},
		"主持人":   {"主持人甲", "主持人乙"},
		"学校与专业": {"××大学计算机", "××学院数据科学", "××大学电子信息"},
		"实习岗位":  {"数据分析", "算法工程", "前端开发"},
		"实习单位":  {"××科技", "××互联网", "××制造"},
		"经费预算":  {"5万", "10万", "20万"},
		"评估指标":  {"MAE", "RMSE", "F1"},
	}
)

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func syntheticValue(rng *rand.Rand, field string, today string) string {
	switch {
	case nameFields[field]:
		return pick(rng, namePool)
	case field == "原告性别":
		return pick(rng, []string{"男", "女"})
	case orgFields[field]:
		return pick(rng, orgPool)
	case field == "法院名称":
		return "××人民法院"
	case field == "日期" || field == "申请日期":
		return today
	}
	if pool, ok := textPools[field]; ok {
		return pick(rng, pool)
	}
	return "示例" + field
}

// Synthesize 为每个模板生成 perTemplate 条合成提交并记录，随后重算学习默认值。
// rng 为空时使用按当前时间播种的随机源。
func (t *Trainer) Synthesize(perTemplate int, rng *rand.Rand) (map[string]map[string]string, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	today := time.Now().Format(defaults.DateLayout)

	for _, tpl := range t.Registry.List() {
		for i := 0; i < perTemplate; i++ {
			values := make(map[string]string, len(tpl.Fields))
			for _, f := range tpl.Fields {
				values[f] = syntheticValue(rng, f, today)
			}
			if err := t.Record(tpl.ID, values); err != nil {
				return nil, fmt.Errorf("记录合成数据失败: %w", err)
			}
		}
	}
	return t.Recompute()
}
