// internal/service/order/domain/event.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// 事件类型同时也是发布的 topic 名
const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent 是发布到总线上的订单事件，Data 是事件发生时的完整订单
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Data        *Order    `json:"data"`
}

func NewOrderEvent(eventType string, order *Order, now time.Time) *OrderEvent {
	snapshot := *order
	snapshot.Items = append([]OrderItem(nil), order.Items...)
	return &OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OrderID:     order.OrderID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status.String(),
		Timestamp:   now,
		Data:        &snapshot,
	}
}
