// internal/service/inventory/application/service.go
package application

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/pkg/rules"
	"eventshop/internal/service/inventory/domain"
	"eventshop/internal/service/inventory/domain/port"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// InventoryApplicationService 编排库存账目、预留记录和事件发布
type InventoryApplicationService struct {
	store    port.RecordStore
	ledger   ledgerWriter
	registry *ReservationRegistry
	events   *eventEmitter
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	lowStock *rules.Evaluator
	now      func() time.Time

	locker     port.ProductLocker
	casStore   port.VersionedRecordStore
	casRetries int

	seedOnce sync.Once
}

// Option 定制应用服务
type Option func(*InventoryApplicationService)

// WithLocker 让同一商品的读-改-写在锁内执行
func WithLocker(l port.ProductLocker) Option {
	return func(s *InventoryApplicationService) { s.locker = l }
}

// WithCompareAndSwap 使用版本令牌写回账目，冲突时最多重试 maxRetries 次
func WithCompareAndSwap(store port.VersionedRecordStore, maxRetries int) Option {
	return func(s *InventoryApplicationService) {
		s.casStore = store
		s.casRetries = maxRetries
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *InventoryApplicationService) { s.metrics = m }
}

// WithLowStockRule 在预留和调整后对账目求值，命中时发布 inventory.low_stock
func WithLowStockRule(ev *rules.Evaluator) Option {
	return func(s *InventoryApplicationService) { s.lowStock = ev }
}

func WithClock(now func() time.Time) Option {
	return func(s *InventoryApplicationService) { s.now = now }
}

func NewInventoryApplicationService(store port.RecordStore, bus port.EventPublisher, tracer trace.Tracer, opts ...Option) *InventoryApplicationService {
	s := &InventoryApplicationService{
		store:    store,
		registry: NewReservationRegistry(store),
		tracer:   tracer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("inventory-service")
	}
	s.events = &eventEmitter{bus: bus, metrics: s.metrics}

	var ledger ledgerWriter = &unsynchronizedWriter{store: store}
	if s.casStore != nil {
		retries := s.casRetries
		if retries <= 0 {
			retries = 1
		}
		ledger = &casWriter{store: s.casStore, maxRetries: retries, metrics: s.metrics}
	}
	if s.locker != nil {
		ledger = &lockedWriter{locker: s.locker, next: ledger}
	}
	s.ledger = ledger
	return s
}

// SeedCatalog 写入初始目录，每个进程只执行一次。已有记录会被覆盖，单个商品失败时跳过。
func (s *InventoryApplicationService) SeedCatalog(ctx context.Context, products []SeedProduct) int {
	seeded := -1
	s.seedOnce.Do(func() {
		seeded = 0
		now := s.now().UTC()
		for _, p := range products {
			inv := domain.NewProductInventory(p.ProductID, p.Name, p.Quantity, p.UnitPrice, now)
			if err := saveInventory(ctx, s.store, inv); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("product_id", p.ProductID).Msg("failed to seed product")
				continue
			}
			seeded++
		}
		logger.Ctx(ctx).Info().Int("products", seeded).Msg("✅ inventory catalog seeded")
	})
	if seeded < 0 {
		logger.Ctx(ctx).Debug().Msg("catalog already seeded in this process, skipping")
		return 0
	}
	return seeded
}

// CheckAvailability 是时间点读取，不修改任何数据
func (s *InventoryApplicationService) CheckAvailability(ctx context.Context, productID string, quantity int32) (*CheckAvailabilityResult, error) {
	const op = "check_availability"
	ctx, span := s.tracer.Start(ctx, "app.CheckAvailability")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID), attribute.Int("quantity", int(quantity)))
	logger.Ctx(ctx).Info().Str("product_id", productID).Int32("quantity", quantity).Msg("checking availability")

	if msg, ok := validateQuantity(productID, quantity); !ok {
		s.reject(ctx, op, msg)
		return &CheckAvailabilityResult{Message: msg}, nil
	}

	inv, err := loadInventory(ctx, s.store, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		s.reject(ctx, op, MsgProductNotFound)
		return &CheckAvailabilityResult{Message: MsgProductNotFound}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	available := inv.CanSatisfy(quantity)
	msg := MsgAvailable
	if !available {
		msg = MsgInsufficient
	}
	s.metrics.ObserveOperation(op, outcomeOK)
	return &CheckAvailabilityResult{
		Available:         available,
		AvailableQuantity: inv.AvailableQuantity,
		Message:           msg,
	}, nil
}

// ReserveInventory 扣减可售数量并创建预留记录
func (s *InventoryApplicationService) ReserveInventory(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error) {
	const op = "reserve"
	ctx, span := s.tracer.Start(ctx, "app.ReserveInventory")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("quantity", int(cmd.Quantity)),
		attribute.String("order.id", cmd.OrderID),
	)
	logger.Ctx(ctx).Info().Str("product_id", cmd.ProductID).Int32("quantity", cmd.Quantity).
		Str("order_id", cmd.OrderID).Msg("reserving inventory")

	if msg, ok := validateQuantity(cmd.ProductID, cmd.Quantity); !ok {
		s.reject(ctx, op, msg)
		return &ReserveResult{Message: msg}, nil
	}

	now := s.now().UTC()
	inv, err := s.ledger.Mutate(ctx, cmd.ProductID, func(inv *domain.ProductInventory) error {
		return inv.Reserve(cmd.Quantity, now)
	})
	if msg, rejected := businessMessage(err); rejected {
		s.reject(ctx, op, msg)
		return &ReserveResult{Message: msg}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	res, err := s.registry.Create(ctx, cmd.ProductID, cmd.Quantity, cmd.OrderID, cmd.CustomerID, now)
	if err != nil {
		// 账目已经写回，预留记录丢失只能记录下来
		return nil, s.internal(ctx, span, op, err)
	}
	span.SetAttributes(attribute.String("reservation.id", res.ReservationID))

	s.events.emit(ctx, domain.EventInventoryReserved, map[string]any{
		"product_id":         cmd.ProductID,
		"quantity":           cmd.Quantity,
		"order_id":           cmd.OrderID,
		"reservation_id":     res.ReservationID,
		"available_quantity": inv.AvailableQuantity,
	}, now)
	s.checkLowStock(ctx, inv, now)

	s.metrics.ObserveOperation(op, outcomeOK)
	return &ReserveResult{Success: true, ReservationID: res.ReservationID, Message: MsgReserved}, nil
}

// ReleaseInventory 把预留数量退回可售；提供了 reservation_id 时删除对应的预留记录
func (s *InventoryApplicationService) ReleaseInventory(ctx context.Context, cmd ReleaseCommand) (*ReleaseResult, error) {
	const op = "release"
	ctx, span := s.tracer.Start(ctx, "app.ReleaseInventory")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("quantity", int(cmd.Quantity)),
		attribute.String("order.id", cmd.OrderID),
		attribute.String("reservation.id", cmd.ReservationID),
	)
	logger.Ctx(ctx).Info().Str("product_id", cmd.ProductID).Int32("quantity", cmd.Quantity).
		Str("order_id", cmd.OrderID).Msg("releasing inventory")

	if msg, ok := validateQuantity(cmd.ProductID, cmd.Quantity); !ok {
		s.reject(ctx, op, msg)
		return &ReleaseResult{Message: msg}, nil
	}

	now := s.now().UTC()
	inv, err := s.ledger.Mutate(ctx, cmd.ProductID, func(inv *domain.ProductInventory) error {
		inv.Release(cmd.Quantity, now)
		return nil
	})
	if msg, rejected := businessMessage(err); rejected {
		s.reject(ctx, op, msg)
		return &ReleaseResult{Message: msg}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	if cmd.ReservationID != "" {
		if err := s.registry.Delete(ctx, cmd.ReservationID); err != nil {
			return nil, s.internal(ctx, span, op, err)
		}
	} else {
		span.AddEvent("release without reservation id, registry untouched")
	}

	s.events.emit(ctx, domain.EventInventoryReleased, map[string]any{
		"product_id":         cmd.ProductID,
		"quantity":           cmd.Quantity,
		"order_id":           cmd.OrderID,
		"available_quantity": inv.AvailableQuantity,
	}, now)

	s.metrics.ObserveOperation(op, outcomeOK)
	return &ReleaseResult{Success: true, Message: MsgReleased}, nil
}

// UpdateInventory 按 QuantityChange 调整总量和可售数量
func (s *InventoryApplicationService) UpdateInventory(ctx context.Context, cmd UpdateCommand) (*InventoryResult, error) {
	const op = "update"
	ctx, span := s.tracer.Start(ctx, "app.UpdateInventory")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("quantity.change", int(cmd.QuantityChange)),
		attribute.String("reason", cmd.Reason),
	)
	logger.Ctx(ctx).Info().Str("product_id", cmd.ProductID).Int32("quantity_change", cmd.QuantityChange).
		Str("reason", cmd.Reason).Msg("updating inventory")

	if cmd.ProductID == "" {
		s.reject(ctx, op, msgInvalidProductID)
		return &InventoryResult{Message: msgInvalidProductID}, nil
	}

	now := s.now().UTC()
	inv, err := s.ledger.Mutate(ctx, cmd.ProductID, func(inv *domain.ProductInventory) error {
		inv.Adjust(cmd.QuantityChange, now)
		return nil
	})
	if msg, rejected := businessMessage(err); rejected {
		s.reject(ctx, op, msg)
		return &InventoryResult{Message: msg}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	s.events.emit(ctx, domain.EventInventoryUpdated, map[string]any{
		"product_id":      cmd.ProductID,
		"quantity_change": cmd.QuantityChange,
		"reason":          cmd.Reason,
		"new_quantity":    inv.AvailableQuantity,
		"new_total":       inv.TotalQuantity,
	}, now)
	s.checkLowStock(ctx, inv, now)

	s.metrics.ObserveOperation(op, outcomeOK)
	return &InventoryResult{Success: true, Inventory: inv, Message: MsgUpdated}, nil
}

// GetInventory 读取商品账目
func (s *InventoryApplicationService) GetInventory(ctx context.Context, productID string) (*InventoryResult, error) {
	const op = "get"
	ctx, span := s.tracer.Start(ctx, "app.GetInventory")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))
	logger.Ctx(ctx).Info().Str("product_id", productID).Msg("getting inventory")

	if productID == "" {
		s.reject(ctx, op, msgInvalidProductID)
		return &InventoryResult{Message: msgInvalidProductID}, nil
	}

	inv, err := loadInventory(ctx, s.store, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		s.reject(ctx, op, MsgProductNotFound)
		return &InventoryResult{Message: MsgProductNotFound}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, span, op, err)
	}

	s.metrics.ObserveOperation(op, outcomeOK)
	return &InventoryResult{Success: true, Inventory: inv, Message: MsgRetrieved}, nil
}

// HandleOrderEvent 处理订单服务发布的事件。目前只记录，不会自动预留或释放库存。
func (s *InventoryApplicationService) HandleOrderEvent(ctx context.Context, topic string, event *domain.OrderEvent) error {
	ctx, span := s.tracer.Start(ctx, "app.HandleOrderEvent", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination", topic),
		attribute.String("order.id", event.OrderID),
	)

	if event.OrderID == "" {
		err := errors.Wrapf(domain.ErrInvalidInput, "%s event without order_id", topic)
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().
		Str("topic", topic).
		Str("order_id", event.OrderID).
		Str("customer_id", event.CustomerID).
		Str("status", event.Status).
		Msg("received order event")
	return nil
}

func (s *InventoryApplicationService) checkLowStock(ctx context.Context, inv *domain.ProductInventory, now time.Time) {
	matched, err := s.lowStock.Matches(rules.StockInput{
		ProductID: inv.ProductID,
		Available: int64(inv.AvailableQuantity),
		Reserved:  int64(inv.ReservedQuantity),
		Total:     int64(inv.TotalQuantity),
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("product_id", inv.ProductID).Msg("low stock rule failed")
		return
	}
	if !matched {
		return
	}
	s.events.emit(ctx, domain.EventInventoryLowStock, map[string]any{
		"product_id":         inv.ProductID,
		"available_quantity": inv.AvailableQuantity,
		"reserved_quantity":  inv.ReservedQuantity,
		"total_quantity":     inv.TotalQuantity,
		"rule":               s.lowStock.Expression(),
	}, now)
}

func (s *InventoryApplicationService) reject(ctx context.Context, op, msg string) {
	s.metrics.ObserveOperation(op, outcomeRejected)
	logger.Ctx(ctx).Info().Str("operation", op).Str("reason", msg).Msg("request rejected")
}

func (s *InventoryApplicationService) internal(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	s.metrics.ObserveOperation(op, outcomeError)
	logger.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("❌ inventory operation failed")
	return err
}

// businessMessage 把领域错误翻译为返回给调用方的消息
func businessMessage(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, domain.ErrProductNotFound):
		return MsgProductNotFound, true
	case errors.Is(err, domain.ErrInsufficientInventory):
		return MsgInsufficient, true
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return MsgConcurrentUpdate, true
	}
	return "", false
}

func validateQuantity(productID string, quantity int32) (string, bool) {
	if productID == "" {
		return msgInvalidProductID, false
	}
	if quantity <= 0 {
		return msgInvalidQuantity, false
	}
	return "", true
}
