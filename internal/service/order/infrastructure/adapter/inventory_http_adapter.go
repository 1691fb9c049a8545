// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/httpclient"
	"eventshop/internal/service/order/domain/port"
)

type availabilityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type availabilityResponse struct {
	Available *bool `json:"available"`
}

// InventoryHTTPAdapter 实现了 port.InventoryChecker，调用库存服务管理端口上的 POST /check-availability
type InventoryHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewInventoryHTTPAdapter 创建一个新的库存服务适配器。
func NewInventoryHTTPAdapter(client *httpclient.Client, baseURL string) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

var _ port.InventoryChecker = (*InventoryHTTPAdapter)(nil)

func (a *InventoryHTTPAdapter) CheckAvailability(ctx context.Context, productID string, quantity int32) (bool, error) {
	out, err := a.client.PostJSON(ctx, a.baseURL+"/"+checkAvailabilityMethod, availabilityRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return false, err
	}
	return decodeAvailability(out)
}

// decodeAvailability 缺少 available 字段或字段不是 true 时都视为库存不足
func decodeAvailability(raw []byte) (bool, error) {
	var resp availabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, errors.Wrapf(port.ErrMalformedInventoryResponse, "decode availability response: %v", err)
	}
	return resp.Available != nil && *resp.Available, nil
}
