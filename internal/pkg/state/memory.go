// internal/pkg/state/memory.go
package state

import (
	"context"
	"strconv"
	"sync"
)

type memoryEntry struct {
	value    []byte
	revision uint64
}

// MemoryStore 是进程内实现，用于测试和本地开发
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nextRev uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, _, found, err := s.GetVersioned(ctx, key)
	return value, found, err
}

func (s *MemoryStore) GetVersioned(_ context.Context, key string) ([]byte, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, "", false, nil
	}
	return cloneBytes(e.value), strconv.FormatUint(e.revision, 10), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value)
	return nil
}

func (s *MemoryStore) CompareAndSet(_ context.Context, key string, value []byte, version string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	switch {
	case version == "" && ok:
		return false, nil
	case version != "" && (!ok || strconv.FormatUint(e.revision, 10) != version):
		return false, nil
	}
	s.put(key, value)
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Keys 返回当前所有 key，供测试断言
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemoryStore) put(key string, value []byte) {
	s.nextRev++
	s.entries[key] = memoryEntry{value: cloneBytes(value), revision: s.nextRev}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
