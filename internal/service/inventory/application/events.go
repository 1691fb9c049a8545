// internal/service/inventory/application/events.go
package application

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/service/inventory/domain"
	"eventshop/internal/service/inventory/domain/port"
)

// eventEmitter 发布事件但不向调用方返回失败：发布失败只记录日志和指标
type eventEmitter struct {
	bus     port.EventPublisher
	metrics *metrics.Metrics
}

func (e *eventEmitter) emit(ctx context.Context, eventType string, data map[string]any, now time.Time) {
	event := domain.NewInventoryEvent(eventType, data, now)
	span := trace.SpanFromContext(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		e.metrics.PublishFailed(eventType)
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("failed to encode event")
		return
	}
	if err := e.bus.Publish(ctx, eventType, payload); err != nil {
		e.metrics.PublishFailed(eventType)
		span.RecordError(err, trace.WithAttributes(attribute.String("event.type", eventType)))
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("❌ failed to publish event")
		return
	}
	span.AddEvent("event published", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.id", event.EventID),
	))
	logger.Ctx(ctx).Info().Str("event_type", eventType).Str("event_id", event.EventID).Msg("published event")
}
