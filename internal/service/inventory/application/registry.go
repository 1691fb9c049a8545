// internal/service/inventory/application/registry.go
package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"eventshop/internal/service/inventory/domain"
	"eventshop/internal/service/inventory/domain/port"
)

// ReservationRegistry 保存预留记录，与库存账目之间没有事务关联
type ReservationRegistry struct {
	store port.RecordStore
}

func NewReservationRegistry(store port.RecordStore) *ReservationRegistry {
	return &ReservationRegistry{store: store}
}

// Create 生成新的预留 id 并保存记录
func (r *ReservationRegistry) Create(ctx context.Context, productID string, quantity int32, orderID, customerID string, now time.Time) (*domain.Reservation, error) {
	res := domain.NewReservation(productID, quantity, orderID, customerID, now)
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(err, "encode reservation")
	}
	if err := r.store.Set(ctx, domain.ReservationKey(res.ReservationID), raw); err != nil {
		return nil, errors.Wrapf(err, "save reservation %s", res.ReservationID)
	}
	return res, nil
}

// Get 读取预留记录
func (r *ReservationRegistry) Get(ctx context.Context, reservationID string) (*domain.Reservation, bool, error) {
	if reservationID == "" {
		return nil, false, nil
	}
	raw, found, err := r.store.Get(ctx, domain.ReservationKey(reservationID))
	if err != nil {
		return nil, false, errors.Wrapf(err, "load reservation %s", reservationID)
	}
	if !found {
		return nil, false, nil
	}
	var res domain.Reservation
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, errors.Wrapf(err, "decode reservation %s", reservationID)
	}
	return &res, true, nil
}

// Delete 删除预留记录；id 为空或记录不存在时什么也不做
func (r *ReservationRegistry) Delete(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}
	if err := r.store.Delete(ctx, domain.ReservationKey(reservationID)); err != nil {
		return errors.Wrapf(err, "delete reservation %s", reservationID)
	}
	return nil
}
