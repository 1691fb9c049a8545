// internal/pkg/state/store.go
package state

import "context"

// Store 是按 key 读写字节记录的最小接口。记录不存在时 Get 返回 found=false 而不是错误。
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// VersionedStore 在 Store 之上提供乐观并发控制。
// version 是不透明的令牌，只能由 GetVersioned 产生；空字符串表示“记录必须不存在”。
type VersionedStore interface {
	Store
	GetVersioned(ctx context.Context, key string) (value []byte, version string, found bool, err error)
	// CompareAndSet 仅当记录仍处于 version 时写入；记录已被他人修改时返回 false, nil
	CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error)
}
