// internal/service/order/api/order.go
package api

// 消息字段名与 order.proto 保持一致，线上使用 JSON 编码。
// Status 使用名称字符串，例如 "ORDER_STATUS_PENDING"，服务端也接受 "PENDING"。

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type Order struct {
	OrderID         string       `json:"order_id"`
	CustomerID      string       `json:"customer_id"`
	CustomerEmail   string       `json:"customer_email"`
	Items           []*OrderItem `json:"items"`
	TotalAmount     float64      `json:"total_amount"`
	Status          string       `json:"status"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
	ShippingAddress string       `json:"shipping_address"`
	PaymentMethod   string       `json:"payment_method"`
	Notes           string       `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	CustomerID      string       `json:"customer_id"`
	CustomerEmail   string       `json:"customer_email"`
	Items           []*OrderItem `json:"items"`
	ShippingAddress string       `json:"shipping_address"`
	PaymentMethod   string       `json:"payment_method"`
}

type CreateOrderResponse struct {
	Order   *Order `json:"order,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type GetOrderRequest struct {
	OrderID string `json:"order_id"`
}

type GetOrderResponse struct {
	Order   *Order `json:"order,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UpdateOrderRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

type UpdateOrderResponse struct {
	Order   *Order `json:"order,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type CancelOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListOrdersRequest struct {
	CustomerID string `json:"customer_id"`
	PageSize   int32  `json:"page_size"`
	PageToken  string `json:"page_token"`
}

type ListOrdersResponse struct {
	Orders        []*Order `json:"orders"`
	NextPageToken string   `json:"next_page_token"`
	TotalCount    int32    `json:"total_count"`
}
