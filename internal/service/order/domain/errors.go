// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
)
