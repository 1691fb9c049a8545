// internal/service/order/application/service.go
package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/service/order/domain"
	"eventshop/internal/service/order/domain/port"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// OrderApplicationService 只关注业务流程编排：持久化、库存检查和事件发布
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	inventory port.InventoryChecker
	bus       port.EventPublisher
	tracer    trace.Tracer
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*OrderApplicationService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *OrderApplicationService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderApplicationService) { s.now = now }
}

func NewOrderApplicationService(orderRepo domain.OrderRepository, inventory port.InventoryChecker, bus port.EventPublisher, tracer trace.Tracer, opts ...Option) *OrderApplicationService {
	s := &OrderApplicationService{
		orderRepo: orderRepo,
		inventory: inventory,
		bus:       bus,
		tracer:    tracer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("order-service")
	}
	return s
}

// CreateOrder 先以 PENDING 落库，再逐项检查库存；任一商品不足时订单标记为 FAILED
func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderResult, error) {
	const op = "create_order"
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", cmd.CustomerID), attribute.Int("order.items", len(cmd.Items)))
	logger.Ctx(ctx).Info().Str("customer_id", cmd.CustomerID).Int("items", len(cmd.Items)).Msg("creating order")

	if msg, ok := validateCreate(cmd); !ok {
		s.reject(ctx, op, msg)
		return &OrderResult{Message: msg}, nil
	}

	now := s.now().UTC()
	order := domain.NewOrder(domain.NewOrderParams{
		CustomerID:      cmd.CustomerID,
		CustomerEmail:   cmd.CustomerEmail,
		Items:           cmd.Items,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
	}, now)
	span.SetAttributes(attribute.String("order.id", order.OrderID), attribute.Float64("order.total", order.TotalAmount))

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, s.internal(ctx, span, op, err)
	}
	span.AddEvent("Initial order saved with PENDING state.")

	available, err := s.checkInventory(ctx, order.Items)
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}
	if !available {
		order.MarkAsFailed(s.now().UTC())
		if err := s.orderRepo.Save(ctx, order); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", order.OrderID).Msg("failed to persist FAILED status")
			span.RecordError(err, trace.WithAttributes(attribute.Bool("critical.error", true)))
		}
		s.reject(ctx, op, MsgInsufficient)
		return &OrderResult{Order: order, Message: MsgInsufficient}, nil
	}

	s.publish(ctx, domain.EventOrderCreated, order)
	logger.Ctx(ctx).Info().Str("order_id", order.OrderID).Float64("total_amount", order.TotalAmount).Msg("✅ order created")
	s.metrics.ObserveOperation(op, outcomeOK)
	return &OrderResult{Order: order, Success: true, Message: MsgOrderCreated}, nil
}

// checkInventory 逐项询问库存服务。库存服务不可达时该项视为可用，响应无法解析时返回错误
func (s *OrderApplicationService) checkInventory(ctx context.Context, items []domain.OrderItem) (bool, error) {
	span := trace.SpanFromContext(ctx)
	for _, item := range items {
		ok, err := s.inventory.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, port.ErrMalformedInventoryResponse) {
			return false, err
		}
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("product_id", item.ProductID).
				Msg("inventory service unreachable, assuming item is available")
			span.AddEvent("inventory unreachable", trace.WithAttributes(attribute.String("product.id", item.ProductID)))
			continue
		}
		if !ok {
			span.AddEvent("insufficient inventory", trace.WithAttributes(attribute.String("product.id", item.ProductID)))
			return false, nil
		}
	}
	return true, nil
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	const op = "get_order"
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		s.reject(ctx, op, MsgOrderNotFound)
		return &OrderResult{Message: MsgOrderNotFound}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}
	s.metrics.ObserveOperation(op, outcomeOK)
	return &OrderResult{Order: order, Success: true, Message: MsgOrderRetrieved}, nil
}

// UpdateOrder 不校验状态流转；只有状态真正变化时才发布 order.updated
func (s *OrderApplicationService) UpdateOrder(ctx context.Context, cmd UpdateOrderCommand) (*OrderResult, error) {
	const op = "update_order"
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", cmd.OrderID), attribute.String("order.status", cmd.Status.String()))
	logger.Ctx(ctx).Info().Str("order_id", cmd.OrderID).Stringer("status", cmd.Status).Msg("updating order")

	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		s.reject(ctx, op, MsgOrderNotFound)
		return &OrderResult{Message: MsgOrderNotFound}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	changed := order.SetStatus(cmd.Status, s.now().UTC())
	if cmd.Notes != "" {
		order.Notes = cmd.Notes
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	if changed {
		s.publish(ctx, domain.EventOrderUpdated, order)
	} else {
		span.AddEvent("status unchanged, no event published")
	}
	s.metrics.ObserveOperation(op, outcomeOK)
	return &OrderResult{Order: order, Success: true, Message: MsgOrderUpdated}, nil
}

// CancelOrder 把订单置为 CANCELLED，取消原因写入 notes，随后发布 order.cancelled
func (s *OrderApplicationService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*CancelOrderResult, error) {
	const op = "cancel_order"
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", cmd.OrderID))

	updated, err := s.UpdateOrder(ctx, UpdateOrderCommand{
		OrderID: cmd.OrderID,
		Status:  domain.StatusCancelled,
		Notes:   cmd.Reason,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to cancel order")
		s.metrics.ObserveOperation(op, outcomeError)
		return nil, err
	}
	if !updated.Success {
		s.reject(ctx, op, MsgCancelFailed)
		return &CancelOrderResult{Message: MsgCancelFailed}, nil
	}

	s.publish(ctx, domain.EventOrderCancelled, updated.Order)
	logger.Ctx(ctx).Info().Str("order_id", cmd.OrderID).Str("reason", cmd.Reason).Msg("order cancelled")
	s.metrics.ObserveOperation(op, outcomeOK)
	return &CancelOrderResult{Success: true, Message: MsgOrderCancelled}, nil
}

// ListOrders 按创建顺序分页返回客户的订单
func (s *OrderApplicationService) ListOrders(ctx context.Context, q ListOrdersQuery) (*ListOrdersResult, error) {
	const op = "list_orders"
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	span.SetAttributes(
		attribute.String("customer.id", q.CustomerID),
		attribute.Int("page.size", pageSize),
		attribute.Int("page.offset", offset),
	)

	orders, total, err := s.orderRepo.ListByCustomer(ctx, q.CustomerID, offset, pageSize)
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}
	next := offset + pageSize
	if next >= total {
		next = -1
	}
	s.metrics.ObserveOperation(op, outcomeOK)
	return &ListOrdersResult{Orders: orders, NextOffset: next, TotalCount: total}, nil
}

// publish 发布失败只记录，不影响用例结果
func (s *OrderApplicationService) publish(ctx context.Context, eventType string, order *domain.Order) {
	event := domain.NewOrderEvent(eventType, order, s.now().UTC())
	span := trace.SpanFromContext(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		s.metrics.PublishFailed(eventType)
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("failed to encode event")
		return
	}
	if err := s.bus.Publish(ctx, eventType, payload); err != nil {
		s.metrics.PublishFailed(eventType)
		span.RecordError(err, trace.WithAttributes(attribute.String("event.type", eventType)))
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Str("order_id", order.OrderID).Msg("❌ failed to publish event")
		return
	}
	span.AddEvent("event published", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.id", event.EventID),
	))
}

func (s *OrderApplicationService) reject(ctx context.Context, op, msg string) {
	s.metrics.ObserveOperation(op, outcomeRejected)
	logger.Ctx(ctx).Warn().Str("operation", op).Msg(msg)
}

func (s *OrderApplicationService) internal(ctx context.Context, span trace.Span, op string, err error) error {
	s.metrics.ObserveOperation(op, outcomeError)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("order operation failed")
	return err
}

func validateCreate(cmd CreateOrderCommand) (string, bool) {
	if cmd.CustomerID == "" || len(cmd.Items) == 0 {
		return msgInvalidOrder, false
	}
	for _, item := range cmd.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return msgInvalidOrderItems, false
		}
	}
	return "", true
}
