package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"eventshop/internal/pkg/state"
)

// instrumentedStore 记录写操作涉及的 key，并可以按前缀注入故障
type instrumentedStore struct {
	*state.MemoryStore

	mu      sync.Mutex
	written []string
	failGet map[string]error
	failSet map[string]error
}

func newInstrumentedStore() *instrumentedStore {
	return &instrumentedStore{
		MemoryStore: state.NewMemoryStore(),
		failGet:     map[string]error{},
		failSet:     map[string]error{},
	}
}

func (s *instrumentedStore) fault(m map[string]error, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for prefix, err := range m {
		if strings.HasPrefix(key, prefix) {
			return err
		}
	}
	return nil
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.fault(s.failGet, key); err != nil {
		return nil, false, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.fault(s.failSet, key); err != nil {
		return err
	}
	s.mu.Lock()
	s.written = append(s.written, key)
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.written = append(s.written, key)
	s.mu.Unlock()
	return s.MemoryStore.Delete(ctx, key)
}

func (s *instrumentedStore) touched(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, k := range s.written {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// gatedStore 让前 parties 次库存读取在读完之后互相等待，
// 保证它们拿到同一份快照后才有人写回。等不齐时超时放行，锁模式下第二个请求要等第一个写完才会读。
// 只拦截 inventory: 前缀，预留记录的读写不受影响。
type gatedStore struct {
	*state.MemoryStore

	mu      sync.Mutex
	parties int
	arrived int
	open    chan struct{}
	timeout time.Duration
}

func newGatedStore(parties int) *gatedStore {
	return &gatedStore{
		MemoryStore: state.NewMemoryStore(),
		parties:     parties,
		open:        make(chan struct{}),
		timeout:     300 * time.Millisecond,
	}
}

func (g *gatedStore) wait(key string) {
	if !strings.HasPrefix(key, "inventory:") {
		return
	}
	g.mu.Lock()
	if g.arrived >= g.parties {
		g.mu.Unlock()
		return
	}
	g.arrived++
	if g.arrived == g.parties {
		close(g.open)
	}
	g.mu.Unlock()

	select {
	case <-g.open:
	case <-time.After(g.timeout):
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := g.MemoryStore.Get(ctx, key)
	g.wait(key)
	return raw, ok, err
}

func (g *gatedStore) GetVersioned(ctx context.Context, key string) ([]byte, string, bool, error) {
	raw, version, ok, err := g.MemoryStore.GetVersioned(ctx, key)
	g.wait(key)
	return raw, version, ok, err
}
