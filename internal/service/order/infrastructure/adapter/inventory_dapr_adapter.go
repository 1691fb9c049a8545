// internal/service/order/infrastructure/adapter/inventory_dapr_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/pkg/errors"

	"eventshop/internal/service/order/domain/port"
)

const checkAvailabilityMethod = "check-availability"

// DaprInvoker 是 dapr 客户端中服务调用的部分
type DaprInvoker interface {
	InvokeMethodWithContent(ctx context.Context, appID, methodName, verb string, content *dapr.DataContent) ([]byte, error)
}

// InventoryDaprAdapter 通过 sidecar 的服务调用访问库存服务的 HTTP 入口
type InventoryDaprAdapter struct {
	client DaprInvoker
	appID  string
}

func NewInventoryDaprAdapter(client DaprInvoker, appID string) *InventoryDaprAdapter {
	return &InventoryDaprAdapter{client: client, appID: appID}
}

var _ port.InventoryChecker = (*InventoryDaprAdapter)(nil)

func (a *InventoryDaprAdapter) CheckAvailability(ctx context.Context, productID string, quantity int32) (bool, error) {
	body, err := json.Marshal(availabilityRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return false, errors.Wrap(err, "encode availability request")
	}
	out, err := a.client.InvokeMethodWithContent(ctx, a.appID, checkAvailabilityMethod, "post", &dapr.DataContent{
		ContentType: "application/json",
		Data:        body,
	})
	if err != nil {
		return false, errors.Wrapf(err, "invoke %s/%s", a.appID, checkAvailabilityMethod)
	}
	return decodeAvailability(out)
}
