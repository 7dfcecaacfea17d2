// Package history 记录每次生成的结果，供查询与回放。
package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/store"
)

// Key 是生成历史在持久化存储中的键。
const Key = "generation_history"

// maxEntries 限制历史长度，超出后丢弃最旧的记录。
const maxEntries = 100

// Entry 是一次生成的快照。
type Entry struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	TemplateID string            `json:"template_id"`
	Values     map[string]string `json:"values,omitempty"`
	Text       string            `json:"text"`
	ImagePath  string            `json:"image_path,omitempty"`
}

// Recorder 把生成历史读写到 Store。零值不可用，字段需显式注入。
type Recorder struct {
	Store store.Store
	Now   func() time.Time
	Log   *logger.Logger

	mu sync.Mutex
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Recorder) log() *logger.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logger.Nop()
}

// load 读取历史；缺失或损坏时退回空历史，不让历史问题影响生成。
func (r *Recorder) load() []Entry {
	blob, err := r.Store.Load(Key)
	if err != nil {
		r.log().Warn("读取生成历史失败", "error", err)
		return nil
	}
	if len(blob) == 0 {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(blob, &entries); err != nil {
		r.log().Warn("生成历史损坏，已忽略", "error", err)
		return nil
	}
	return entries
}

// Append 追加一条历史并持久化，返回带 ID 与时间戳的完整条目。
func (r *Recorder) Append(templateID string, values map[string]string, text, imagePath string) (Entry, error) {
	entry := Entry{
		ID:         uuid.NewString(),
		Timestamp:  r.now(),
		TemplateID: templateID,
		Values:     copyValues(values),
		Text:       text,
		ImagePath:  imagePath,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append(r.load(), entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	blob, err := json.Marshal(entries)
	if err != nil {
		return Entry{}, fmt.Errorf("序列化生成历史失败: %w", err)
	}
	if err := r.Store.Save(Key, blob); err != nil {
		return Entry{}, fmt.Errorf("保存生成历史失败: %w", err)
	}
	return entry, nil
}

// List 按时间倒序返回全部历史，最新的在前。
func (r *Recorder) List() []Entry {
	r.mu.Lock()
	entries := r.load()
	r.mu.Unlock()

	reversed := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}
	return reversed
}

// Latest 返回指定模板最近的一条记录。
func (r *Recorder) Latest(templateID string) (Entry, bool) {
	r.mu.Lock()
	entries := r.load()
	r.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].TemplateID == templateID {
			return entries[i], true
		}
	}
	return Entry{}, false
}

func copyValues(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
