// internal/service/order/application/dto.go
package application

import "eventshop/internal/service/order/domain"

const (
	MsgOrderCreated      = "Order created successfully"
	MsgInsufficient      = "Insufficient inventory"
	MsgOrderNotFound     = "Order not found"
	MsgOrderRetrieved    = "Order retrieved successfully"
	MsgOrderUpdated      = "Order updated successfully"
	MsgOrderCancelled    = "Order cancelled successfully"
	MsgCancelFailed      = "Failed to cancel order"
	msgInvalidOrder      = "Order must have a customer and at least one item"
	msgInvalidOrderItems = "Order items must have a product and a positive quantity"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateOrderCommand 是创建订单用例的输入数据
type CreateOrderCommand struct {
	CustomerID      string
	CustomerEmail   string
	Items           []domain.OrderItem
	ShippingAddress string
	PaymentMethod   string
}

// OrderResult 是单个订单用例的输出，Order 在业务失败时也可能非空
type OrderResult struct {
	Order   *domain.Order
	Success bool
	Message string
}

type UpdateOrderCommand struct {
	OrderID string
	Status  domain.Status
	Notes   string
}

type CancelOrderCommand struct {
	OrderID string
	Reason  string
}

type CancelOrderResult struct {
	Success bool
	Message string
}

// ListOrdersQuery 中 Offset 由接口层从 page_token 解析
type ListOrdersQuery struct {
	CustomerID string
	PageSize   int
	Offset     int
}

type ListOrdersResult struct {
	Orders     []*domain.Order
	NextOffset int // 没有下一页时为 -1
	TotalCount int
}
