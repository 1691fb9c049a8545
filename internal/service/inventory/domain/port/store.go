// internal/service/inventory/domain/port/store.go
package port

import "context"

// RecordStore 是库存服务对外部 key/value 存储的全部要求
type RecordStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// VersionedRecordStore 支持比较并交换，cas 并发模式需要
type VersionedRecordStore interface {
	RecordStore
	GetVersioned(ctx context.Context, key string) (value []byte, version string, found bool, err error)
	CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error)
}
