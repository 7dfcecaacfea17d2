package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Store 是核心与持久化层之间的键值接口。
// Load 在键不存在时返回 (nil, nil)，只有真正的读取故障才返回错误；
// 调用方应把读取故障降级为"无持久化数据"，而不是让生成流程失败。
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, blob []byte) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileStore 把每个键保存为 <dir>/<key>.json。
// 写入通过临时文件加重命名完成，并由互斥锁串联，保证并发追加不丢行。
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore 创建基于目录的存储，目录在首次写入时创建。
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("非法的存储键：%q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Load 读取指定键的内容，键不存在时返回 (nil, nil)。
func (s *FileStore) Load(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取存储键 %s 失败: %w", key, err)
	}
	return data, nil
}

// Save 覆盖写入指定键。
func (s *FileStore) Save(key string, blob []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建存储目录失败: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("写入存储键 %s 失败: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("提交存储键 %s 失败: %w", key, err)
	}
	return nil
}

// MemStore 是测试用的内存实现。
type MemStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemStore 创建空的内存存储。
func NewMemStore() *MemStore {
	return &MemStore{blobs: map[string][]byte{}}
}

func (s *MemStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *MemStore) Save(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(blob))
	copy(out, blob)
	s.blobs[key] = out
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)
