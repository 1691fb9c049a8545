// internal/service/order/domain/port/inventory.go
package port

import (
	"context"
	"errors"
)

// InventoryChecker 是库存服务的出站端口
type InventoryChecker interface {
	// CheckAvailability 返回库存是否足够。除 ErrMalformedInventoryResponse 外的 error 都表示库存服务不可达
	CheckAvailability(ctx context.Context, productID string, quantity int32) (bool, error)
}

// ErrMalformedInventoryResponse 表示库存服务可达但响应无法解析
var ErrMalformedInventoryResponse = errors.New("malformed inventory response")
