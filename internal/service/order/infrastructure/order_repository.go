// internal/service/order/infrastructure/order_repository.go
package infrastructure

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/service/order/domain"
	"eventshop/internal/service/order/domain/port"
)

// StoreOrderRepository 把订单以 JSON 存在 "order:{id}"，
// 并在 "customer-orders:{customer_id}" 中按创建顺序维护客户的订单 id 列表
type StoreOrderRepository struct {
	store port.RecordStore
	// 进程内串行化索引的读-改-写，多副本之间不保证
	indexMu sync.Mutex
}

func NewStoreOrderRepository(store port.RecordStore) *StoreOrderRepository {
	return &StoreOrderRepository{store: store}
}

var _ domain.OrderRepository = (*StoreOrderRepository)(nil)

func (r *StoreOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	key := domain.OrderKey(order.OrderID)
	_, existed, err := r.store.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "load order %s", order.OrderID)
	}
	raw, err := json.Marshal(order)
	if err != nil {
		return errors.Wrapf(err, "encode order %s", order.OrderID)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "save order %s", order.OrderID)
	}
	if existed || order.CustomerID == "" {
		return nil
	}
	return r.appendToIndex(ctx, order.CustomerID, order.OrderID)
}

func (r *StoreOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	raw, found, err := r.store.Get(ctx, domain.OrderKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "load order %s", id)
	}
	if !found {
		return nil, domain.ErrOrderNotFound
	}
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, errors.Wrapf(err, "decode order %s", id)
	}
	return &order, nil
}

func (r *StoreOrderRepository) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*domain.Order, int, error) {
	ids, err := r.loadIndex(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}
	total := len(ids)
	if offset >= total || limit <= 0 {
		return []*domain.Order{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	orders := make([]*domain.Order, 0, end-offset)
	for _, id := range ids[offset:end] {
		order, err := r.FindByID(ctx, id)
		if errors.Is(err, domain.ErrOrderNotFound) {
			logger.Ctx(ctx).Warn().Str("order_id", id).Str("customer_id", customerID).Msg("indexed order is missing, skipping")
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

func (r *StoreOrderRepository) loadIndex(ctx context.Context, customerID string) ([]string, error) {
	raw, found, err := r.store.Get(ctx, domain.CustomerOrdersKey(customerID))
	if err != nil {
		return nil, errors.Wrapf(err, "load order index of %s", customerID)
	}
	if !found {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, errors.Wrapf(err, "decode order index of %s", customerID)
	}
	return ids, nil
}

func (r *StoreOrderRepository) appendToIndex(ctx context.Context, customerID, orderID string) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	ids, err := r.loadIndex(ctx, customerID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(ids, orderID))
	if err != nil {
		return errors.Wrapf(err, "encode order index of %s", customerID)
	}
	if err := r.store.Set(ctx, domain.CustomerOrdersKey(customerID), raw); err != nil {
		return errors.Wrapf(err, "save order index of %s", customerID)
	}
	return nil
}
