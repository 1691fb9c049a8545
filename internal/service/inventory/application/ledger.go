// internal/service/inventory/application/ledger.go
package application

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/service/inventory/domain"
	"eventshop/internal/service/inventory/domain/port"
)

// ledgerWriter 对单个商品执行读-改-写。fn 返回错误时不写回。
type ledgerWriter interface {
	Mutate(ctx context.Context, productID string, fn func(inv *domain.ProductInventory) error) (*domain.ProductInventory, error)
}

func loadInventory(ctx context.Context, store port.RecordStore, productID string) (*domain.ProductInventory, error) {
	raw, found, err := store.Get(ctx, domain.InventoryKey(productID))
	if err != nil {
		return nil, errors.Wrapf(err, "load inventory %s", productID)
	}
	if !found {
		return nil, domain.ErrProductNotFound
	}
	return decodeInventory(productID, raw)
}

func decodeInventory(productID string, raw []byte) (*domain.ProductInventory, error) {
	var inv domain.ProductInventory
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, errors.Wrapf(err, "decode inventory %s", productID)
	}
	return &inv, nil
}

func saveInventory(ctx context.Context, store port.RecordStore, inv *domain.ProductInventory) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return errors.Wrapf(err, "encode inventory %s", inv.ProductID)
	}
	if err := store.Set(ctx, domain.InventoryKey(inv.ProductID), raw); err != nil {
		return errors.Wrapf(err, "save inventory %s", inv.ProductID)
	}
	return nil
}

// unsynchronizedWriter 不做任何并发控制，同一商品的并发请求可能互相覆盖
type unsynchronizedWriter struct {
	store port.RecordStore
}

func (w *unsynchronizedWriter) Mutate(ctx context.Context, productID string, fn func(*domain.ProductInventory) error) (*domain.ProductInventory, error) {
	inv, err := loadInventory(ctx, w.store, productID)
	if err != nil {
		return nil, err
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	if err := saveInventory(ctx, w.store, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// lockedWriter 在持有商品锁期间执行 next
type lockedWriter struct {
	locker port.ProductLocker
	next   ledgerWriter
}

func (w *lockedWriter) Mutate(ctx context.Context, productID string, fn func(*domain.ProductInventory) error) (*domain.ProductInventory, error) {
	unlock, err := w.locker.Lock(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "lock inventory %s", productID)
	}
	defer unlock()
	return w.next.Mutate(ctx, productID, fn)
}

// casWriter 基于版本令牌做乐观并发控制，冲突时重新读取并重试
type casWriter struct {
	store      port.VersionedRecordStore
	maxRetries int
	metrics    *metrics.Metrics
}

func (w *casWriter) Mutate(ctx context.Context, productID string, fn func(*domain.ProductInventory) error) (*domain.ProductInventory, error) {
	key := domain.InventoryKey(productID)
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		raw, version, found, err := w.store.GetVersioned(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "load inventory %s", productID)
		}
		if !found {
			return nil, domain.ErrProductNotFound
		}
		inv, err := decodeInventory(productID, raw)
		if err != nil {
			return nil, err
		}
		if err := fn(inv); err != nil {
			return nil, err
		}
		next, err := json.Marshal(inv)
		if err != nil {
			return nil, errors.Wrapf(err, "encode inventory %s", productID)
		}
		ok, err := w.store.CompareAndSet(ctx, key, next, version)
		if err != nil {
			return nil, errors.Wrapf(err, "save inventory %s", productID)
		}
		if ok {
			return inv, nil
		}
		w.metrics.CASConflict()
		logger.Ctx(ctx).Debug().Str("product_id", productID).Int("attempt", attempt).Msg("inventory version conflict, retrying")
	}
	return nil, domain.ErrConcurrentUpdate
}
