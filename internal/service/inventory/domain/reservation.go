// internal/service/inventory/domain/reservation.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation 记录一次成功的预留
type Reservation struct {
	ReservationID string    `json:"reservation_id"`
	ProductID     string    `json:"product_id"`
	Quantity      int32     `json:"quantity"`
	OrderID       string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewReservation(productID string, quantity int32, orderID, customerID string, now time.Time) *Reservation {
	return &Reservation{
		ReservationID: uuid.NewString(),
		ProductID:     productID,
		Quantity:      quantity,
		OrderID:       orderID,
		CustomerID:    customerID,
		CreatedAt:     now,
	}
}

func ReservationKey(reservationID string) string {
	return "reservation:" + reservationID
}
