// internal/service/inventory/api/inventory.go
package api

// 消息字段名与 inventory.proto 保持一致，线上使用 JSON 编码

type CheckAvailabilityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type CheckAvailabilityResponse struct {
	Available         bool   `json:"available"`
	AvailableQuantity int32  `json:"available_quantity"`
	Message           string `json:"message"`
}

type ReserveInventoryRequest struct {
	ProductID  string `json:"product_id"`
	Quantity   int32  `json:"quantity"`
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

type ReserveInventoryResponse struct {
	Success       bool   `json:"success"`
	ReservationID string `json:"reservation_id"`
	Message       string `json:"message"`
}

type ReleaseInventoryRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      int32  `json:"quantity"`
	OrderID       string `json:"order_id"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type ReleaseInventoryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UpdateInventoryRequest struct {
	ProductID      string `json:"product_id"`
	QuantityChange int32  `json:"quantity_change"`
	Reason         string `json:"reason"`
}

type UpdateInventoryResponse struct {
	Success   bool              `json:"success"`
	Inventory *ProductInventory `json:"inventory,omitempty"`
	Message   string            `json:"message"`
}

type GetInventoryRequest struct {
	ProductID string `json:"product_id"`
}

type GetInventoryResponse struct {
	Success   bool              `json:"success"`
	Inventory *ProductInventory `json:"inventory,omitempty"`
	Message   string            `json:"message"`
}

// ProductInventory 中 last_updated 是 RFC3339 字符串
type ProductInventory struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	AvailableQuantity int32   `json:"available_quantity"`
	ReservedQuantity  int32   `json:"reserved_quantity"`
	TotalQuantity     int32   `json:"total_quantity"`
	UnitPrice         float64 `json:"unit_price"`
	LastUpdated       string  `json:"last_updated"`
}
