// internal/service/inventory/domain/inventory.go
package domain

import (
	"math"
	"time"
)

// ProductInventory 是单个商品的库存账目
// 预期 total = available + reserved，但部分更新后不做强制校验
type ProductInventory struct {
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	AvailableQuantity int32     `json:"available_quantity"`
	ReservedQuantity  int32     `json:"reserved_quantity"`
	TotalQuantity     int32     `json:"total_quantity"`
	UnitPrice         float64   `json:"unit_price"`
	LastUpdated       time.Time `json:"last_updated"`
}

// NewProductInventory 用于初始化目录，所有数量都处于可售状态
func NewProductInventory(productID, name string, quantity int32, unitPrice float64, now time.Time) *ProductInventory {
	return &ProductInventory{
		ProductID:         productID,
		ProductName:       name,
		AvailableQuantity: quantity,
		TotalQuantity:     quantity,
		UnitPrice:         unitPrice,
		LastUpdated:       now,
	}
}

// CanSatisfy 判断当前可售数量能否满足请求
func (p *ProductInventory) CanSatisfy(quantity int32) bool {
	return p.AvailableQuantity >= quantity
}

// Reserve 把 quantity 从可售转为预留
func (p *ProductInventory) Reserve(quantity int32, now time.Time) error {
	if !p.CanSatisfy(quantity) {
		return ErrInsufficientInventory
	}
	p.AvailableQuantity = addClamped(p.AvailableQuantity, -quantity)
	p.ReservedQuantity = addClamped(p.ReservedQuantity, quantity)
	p.LastUpdated = now
	return nil
}

// Release 把 quantity 从预留退回可售。不检查下限，reserved 可能变为负数。
// 超出 int32 的结果截断在边界上
func (p *ProductInventory) Release(quantity int32, now time.Time) {
	p.AvailableQuantity = addClamped(p.AvailableQuantity, quantity)
	p.ReservedQuantity = addClamped(p.ReservedQuantity, -quantity)
	p.LastUpdated = now
}

// Adjust 同时调整 total 和 available，两者各自截断到 [0, MaxInt32]
func (p *ProductInventory) Adjust(delta int32, now time.Time) {
	p.TotalQuantity = addClamped(p.TotalQuantity, delta)
	p.AvailableQuantity = addClamped(p.AvailableQuantity, delta)
	if p.TotalQuantity < 0 {
		p.TotalQuantity = 0
	}
	if p.AvailableQuantity < 0 {
		p.AvailableQuantity = 0
	}
	p.LastUpdated = now
}

// addClamped 在 int64 上求和，结果截断到 int32 范围
func addClamped(a, b int32) int32 {
	sum := int64(a) + int64(b)
	switch {
	case sum > math.MaxInt32:
		return math.MaxInt32
	case sum < math.MinInt32:
		return math.MinInt32
	}
	return int32(sum)
}

// InventoryKey 返回库存记录在存储中的 key
func InventoryKey(productID string) string {
	return "inventory:" + productID
}
