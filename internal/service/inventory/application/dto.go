// internal/service/inventory/application/dto.go
package application

import "eventshop/internal/service/inventory/domain"

// 返回给调用方的业务消息
const (
	MsgProductNotFound  = "Product not found"
	MsgInsufficient     = "Insufficient inventory"
	MsgAvailable        = "Available"
	MsgReserved         = "Inventory reserved successfully"
	MsgReleased         = "Inventory released successfully"
	MsgUpdated          = "Inventory updated successfully"
	MsgRetrieved        = "Inventory retrieved successfully"
	MsgConcurrentUpdate = "Inventory changed concurrently, please retry"
	msgInvalidProductID = "Invalid input: product_id is required"
	msgInvalidQuantity  = "Invalid input: quantity must be positive"
)

// CheckAvailabilityResult 是可用性查询的结果
type CheckAvailabilityResult struct {
	Available         bool
	AvailableQuantity int32
	Message           string
}

// ReserveCommand 是预留库存用例的输入
type ReserveCommand struct {
	ProductID  string
	Quantity   int32
	OrderID    string
	CustomerID string
}

type ReserveResult struct {
	Success       bool
	ReservationID string
	Message       string
}

// ReleaseCommand 中 ReservationID 可以为空，此时只回补账目
type ReleaseCommand struct {
	ProductID     string
	Quantity      int32
	OrderID       string
	ReservationID string
}

type ReleaseResult struct {
	Success bool
	Message string
}

// UpdateCommand 的 QuantityChange 可以为负数或 0
type UpdateCommand struct {
	ProductID      string
	QuantityChange int32
	Reason         string
}

// InventoryResult 是 UpdateInventory 和 GetInventory 的结果
type InventoryResult struct {
	Success   bool
	Inventory *domain.ProductInventory
	Message   string
}

// SeedProduct 是目录初始化时的一条商品
type SeedProduct struct {
	ProductID string
	Name      string
	Quantity  int32
	UnitPrice float64
}

// DefaultCatalog 是未配置目录时使用的示例商品
func DefaultCatalog() []SeedProduct {
	return []SeedProduct{
		{ProductID: "prod-001", Name: "Laptop Computer", Quantity: 50, UnitPrice: 999.99},
		{ProductID: "prod-002", Name: "Wireless Mouse", Quantity: 200, UnitPrice: 29.99},
		{ProductID: "prod-003", Name: "Mechanical Keyboard", Quantity: 75, UnitPrice: 149.99},
	}
}
