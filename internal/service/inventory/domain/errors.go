// internal/service/inventory/domain/errors.go
package domain

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidInput          = errors.New("invalid input")
	// ErrConcurrentUpdate 表示 cas 模式下重试次数用尽
	ErrConcurrentUpdate = errors.New("inventory changed concurrently")
)
