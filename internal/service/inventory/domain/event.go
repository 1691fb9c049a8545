// internal/service/inventory/domain/event.go
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// 事件类型同时也是发布的 topic 名
const (
	EventInventoryReserved = "inventory.reserved"
	EventInventoryReleased = "inventory.released"
	EventInventoryUpdated  = "inventory.updated"
	EventInventoryLowStock = "inventory.low_stock"
)

// InventoryEvent 是发布到总线上的信封，发出后不再修改，也不落库
type InventoryEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

func NewInventoryEvent(eventType string, data map[string]any, now time.Time) *InventoryEvent {
	return &InventoryEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: now,
		Data:      data,
	}
}

// OrderEvent 是订单服务发布的事件中库存服务关心的部分，完整订单在 Data 中
type OrderEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	TotalAmount float64         `json:"total_amount"`
	Status      string          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
	Data        json.RawMessage `json:"data,omitempty"`
}
