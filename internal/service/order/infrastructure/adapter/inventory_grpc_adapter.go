// internal/service/order/infrastructure/adapter/inventory_grpc_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	inventoryapi "eventshop/internal/service/inventory/api"
	"eventshop/internal/service/order/domain/port"
)

// InventoryGRPCAdapter 实现了 port.InventoryChecker，直接调用库存服务的 gRPC 接口
type InventoryGRPCAdapter struct {
	client inventoryapi.InventoryServiceClient
}

func NewInventoryGRPCAdapter(client inventoryapi.InventoryServiceClient) *InventoryGRPCAdapter {
	return &InventoryGRPCAdapter{client: client}
}

var _ port.InventoryChecker = (*InventoryGRPCAdapter)(nil)

func (a *InventoryGRPCAdapter) CheckAvailability(ctx context.Context, productID string, quantity int32) (bool, error) {
	resp, err := a.client.CheckAvailability(ctx, &inventoryapi.CheckAvailabilityRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return false, errors.Wrapf(err, "check availability of %s", productID)
	}
	return resp.Available, nil
}
