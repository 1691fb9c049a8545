// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem 是订单中的一行商品，TotalPrice 在创建订单时计算
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Order 是订单聚合的根实体
type Order struct {
	OrderID         string      `json:"order_id"`
	CustomerID      string      `json:"customer_id"`
	CustomerEmail   string      `json:"customer_email"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Status          Status      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes,omitempty"`
}

// NewOrderParams 是创建订单时调用方提供的字段
type NewOrderParams struct {
	CustomerID      string
	CustomerEmail   string
	Items           []OrderItem
	ShippingAddress string
	PaymentMethod   string
}

// 工厂函数: NewOrder 计算每行小计与订单总额，初始状态为 PENDING
func NewOrder(p NewOrderParams, now time.Time) *Order {
	items := make([]OrderItem, len(p.Items))
	var total float64
	for i, item := range p.Items {
		item.TotalPrice = float64(item.Quantity) * item.UnitPrice
		total += item.TotalPrice
		items[i] = item
	}
	return &Order{
		OrderID:         uuid.NewString(),
		CustomerID:      p.CustomerID,
		CustomerEmail:   p.CustomerEmail,
		Items:           items,
		TotalAmount:     total,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   p.PaymentMethod,
	}
}

// SetStatus 不校验状态流转，返回状态是否发生了变化
func (o *Order) SetStatus(status Status, now time.Time) bool {
	changed := o.Status != status
	o.Status = status
	o.UpdatedAt = now
	return changed
}

// MarkAsFailed 将订单标记为失败
func (o *Order) MarkAsFailed(now time.Time) {
	o.SetStatus(StatusFailed, now)
}

func OrderKey(orderID string) string {
	return "order:" + orderID
}

func CustomerOrdersKey(customerID string) string {
	return "customer-orders:" + customerID
}
