// Package learn 记录历史字段值，并把每个 (模板, 字段) 的众数重算为学习默认值。
package learn

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ByLCY/wenshu/defaults"
	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/store"
	"github.com/ByLCY/wenshu/template"
)

// TrainingKey 是训练日志在持久化存储中的键。
const TrainingKey = "training_log"

// Row 是一条训练记录：某模板某字段的一次非空提交。日志只追加。
type Row struct {
	TemplateID string `json:"template_id"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

type trainingLog struct {
	Rows []Row `json:"rows"`
}

// Trainer 是学习子系统。Record/Recompute 由内部互斥锁串联，
// 并发 Record 不会丢行；Recompute 以最后写入者为准。
type Trainer struct {
	Registry *template.Registry
	Store    store.Store
	Log      *logger.Logger

	mu sync.Mutex
}

func (t *Trainer) log() *logger.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logger.Nop()
}

// Record 把一次提交中每个非空字段追加为一条训练记录。
// 未知模板 id 与空值字段均为无操作。
func (t *Trainer) Record(templateID string, values map[string]string) error {
	tpl, err := t.Registry.Find(templateID)
	if err != nil {
		return nil
	}

	var rows []Row
	for _, f := range tpl.Fields {
		v := strings.TrimSpace(values[f])
		if v == "" {
			continue
		}
		rows = append(rows, Row{TemplateID: templateID, Field: f, Value: v})
	}
	if len(rows) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	log := t.loadLog()
	log.Rows = append(log.Rows, rows...)
	blob, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("编码训练日志失败: %w", err)
	}
	if err := t.Store.Save(TrainingKey, blob); err != nil {
		return fmt.Errorf("保存训练日志失败: %w", err)
	}
	return nil
}

// loadLog 读取训练日志；缺失或损坏的日志降级为空日志。
func (t *Trainer) loadLog() trainingLog {
	var log trainingLog
	blob, err := t.Store.Load(TrainingKey)
	if err != nil {
		t.log().Warn("读取训练日志失败，按空日志处理", "error", err)
		return log
	}
	if len(blob) == 0 {
		return log
	}
	if err := json.Unmarshal(blob, &log); err != nil {
		t.log().Warn("训练日志损坏，按空日志处理", "error", err)
		return trainingLog{}
	}
	return log
}

// Recompute 扫描全部训练记录，对每个 (模板, 字段) 取出现次数最高的值，
// 平局按扫描中先出现者优先，然后整体覆盖学习默认值快照。
// 日志固定时结果确定。
func (t *Trainer) Recompute() (map[string]map[string]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.loadLog()

	type stat struct {
		count     int
		firstSeen int
	}
	counts := map[string]map[string]map[string]*stat{}
	for i, row := range log.Rows {
		if row.TemplateID == "" || row.Field == "" || row.Value == "" {
			continue
		}
		byField, ok := counts[row.TemplateID]
		if !ok {
			byField = map[string]map[string]*stat{}
			counts[row.TemplateID] = byField
		}
		byValue, ok := byField[row.Field]
		if !ok {
			byValue = map[string]*stat{}
			byField[row.Field] = byValue
		}
		s, ok := byValue[row.Value]
		if !ok {
			byValue[row.Value] = &stat{count: 1, firstSeen: i}
			continue
		}
		s.count++
	}

	result := map[string]map[string]string{}
	for tid, byField := range counts {
		for field, byValue := range byField {
			best := ""
			bestStat := &stat{count: -1, firstSeen: -1}
			for value, s := range byValue {
				if s.count > bestStat.count ||
					(s.count == bestStat.count && s.firstSeen < bestStat.firstSeen) {
					best = value
					bestStat = s
				}
			}
			if best == "" {
				continue
			}
			if result[tid] == nil {
				result[tid] = map[string]string{}
			}
			result[tid][field] = best
		}
	}

	blob, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("编码学习默认值失败: %w", err)
	}
	if err := t.Store.Save(defaults.LearnedKey, blob); err != nil {
		return nil, fmt.Errorf("保存学习默认值失败: %w", err)
	}
	return result, nil
}
