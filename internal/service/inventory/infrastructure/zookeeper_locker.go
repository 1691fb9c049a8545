// internal/service/inventory/infrastructure/zookeeper_locker.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/zookeeper"
	"eventshop/internal/service/inventory/domain"
)

// ZookeeperLocker 用 ZooKeeper 顺序临时节点实现跨进程的商品锁
type ZookeeperLocker struct {
	conn *zookeeper.Conn
	wait time.Duration
}

func NewZookeeperLocker(conn *zookeeper.Conn, wait time.Duration) *ZookeeperLocker {
	return &ZookeeperLocker{conn: conn, wait: wait}
}

func (l *ZookeeperLocker) Lock(ctx context.Context, productID string) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, domain.InventoryKey(productID), l.wait)
	if err != nil {
		return nil, errors.Wrapf(err, "prepare lock for %s", productID)
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, errors.Wrapf(err, "acquire lock for %s", productID)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("product_id", productID).Msg("failed to release zookeeper lock")
		}
	}, nil
}
