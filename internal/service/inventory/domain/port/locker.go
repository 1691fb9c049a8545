// internal/service/inventory/domain/port/locker.go
package port

import "context"

// ProductLocker 串行化同一商品的读-改-写。unlock 必须被调用且只调用一次。
type ProductLocker interface {
	Lock(ctx context.Context, productID string) (unlock func(), err error)
}
