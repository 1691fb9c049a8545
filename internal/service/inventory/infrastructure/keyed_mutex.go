// internal/service/inventory/infrastructure/keyed_mutex.go
package infrastructure

import (
	"context"
	"sync"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex 是进程内按商品加锁的实现，不同商品互不阻塞
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock 等待 productID 的锁，ctx 结束时放弃等待
func (k *KeyedMutex) Lock(ctx context.Context, productID string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[productID]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[productID] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(productID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.release(productID, l)
		})
	}, nil
}

func (k *KeyedMutex) release(productID string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, productID)
	}
}

// size 返回仍在使用中的锁数量
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
