package application

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/service/inventory/domain"
	"eventshop/internal/service/inventory/infrastructure"
)

// raceFullStock 让两个请求同时预留 prod-001 的全部 50 件库存
func raceFullStock(t *testing.T, store *gatedStore, opts ...Option) (successes int, svc *InventoryApplicationService) {
	t.Helper()
	return raceReserve(t, store, 50, opts...)
}

// raceReserve 让两个请求同时从 prod-001 (50 件) 预留 quantity 件
func raceReserve(t *testing.T, store *gatedStore, quantity int32, opts ...Option) (successes int, svc *InventoryApplicationService) {
	t.Helper()
	ctx := context.Background()
	svc = NewInventoryApplicationService(store, pubsub.NewMemoryBus(), nil, opts...)
	require.Equal(t, 3, svc.SeedCatalog(ctx, DefaultCatalog()))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*ReserveResult
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.ReserveInventory(ctx, ReserveCommand{ProductID: "prod-001", Quantity: quantity})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r.Success {
			successes++
		}
	}
	return successes, svc
}

func TestConcurrentReserve_UnsynchronizedAllowsLostUpdate(t *testing.T) {
	store := newGatedStore(2)
	successes, svc := raceFullStock(t, store)

	assert.Equal(t, 2, successes, "both reserves read 50 before either writes")

	inv, err := loadInventory(context.Background(), svc.store, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int32(0), inv.AvailableQuantity)
	assert.Equal(t, int32(50), inv.ReservedQuantity, "one write overwrote the other")

	var reservations int
	for _, k := range store.Keys() {
		if strings.HasPrefix(k, "reservation:") {
			reservations++
		}
	}
	assert.Equal(t, 2, reservations)
}

func TestConcurrentReserve_UnsynchronizedLosesOneDecrement(t *testing.T) {
	store := newGatedStore(2)
	successes, svc := raceReserve(t, store, 10)
	assert.Equal(t, 2, successes)

	inv, err := loadInventory(context.Background(), svc.store, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int32(40), inv.AvailableQuantity, "50-10, not 50-20")
	assert.Equal(t, int32(10), inv.ReservedQuantity)
}

func TestConcurrentReserve_MutexKeepsBothDecrements(t *testing.T) {
	store := newGatedStore(2)
	successes, svc := raceReserve(t, store, 10, WithLocker(infrastructure.NewKeyedMutex()))
	assert.Equal(t, 2, successes)

	inv, err := loadInventory(context.Background(), svc.store, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int32(30), inv.AvailableQuantity)
	assert.Equal(t, int32(20), inv.ReservedQuantity)
}

func TestConcurrentReserve_MutexAllowsExactlyOne(t *testing.T) {
	store := newGatedStore(2)
	successes, svc := raceFullStock(t, store, WithLocker(infrastructure.NewKeyedMutex()))

	assert.Equal(t, 1, successes)
	inv, err := loadInventory(context.Background(), svc.store, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int32(0), inv.AvailableQuantity)
	assert.Equal(t, int32(50), inv.ReservedQuantity)
}

func TestConcurrentReserve_CASAllowsExactlyOne(t *testing.T) {
	store := newGatedStore(2)
	successes, svc := raceFullStock(t, store, WithCompareAndSwap(store, 5))

	assert.Equal(t, 1, successes)
	inv, err := loadInventory(context.Background(), svc.store, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int32(0), inv.AvailableQuantity)
	assert.Equal(t, int32(50), inv.ReservedQuantity)
}

// conflictingStore 每次写入前都让别人先改一下，用来耗尽重试次数
type conflictingStore struct {
	*gatedStore
}

func (c conflictingStore) CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error) {
	raw, _, _ := c.MemoryStore.Get(ctx, key)
	_ = c.MemoryStore.Set(ctx, key, raw)
	return c.MemoryStore.CompareAndSet(ctx, key, value, version)
}

func TestCASRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	store := conflictingStore{newGatedStore(0)}
	bus := pubsub.NewMemoryBus()
	svc := NewInventoryApplicationService(store, bus, nil, WithCompareAndSwap(store, 3))
	svc.SeedCatalog(ctx, DefaultCatalog())

	res, err := svc.ReserveInventory(ctx, ReserveCommand{ProductID: "prod-002", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgConcurrentUpdate, res.Message)
	assert.Empty(t, bus.Topic(domain.EventInventoryReserved))
}
