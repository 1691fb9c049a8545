// internal/service/order/domain/port/store.go
package port

import "context"

// RecordStore 是订单仓储依赖的 key/value 存储
type RecordStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
