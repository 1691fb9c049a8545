// internal/service/inventory/interfaces/order_events_consumer.go
package interfaces

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/mq"
	"eventshop/internal/service/inventory/application"
)

// OrderEventsConsumer 是一个驱动适配器，监听 order.created / order.cancelled 并交给应用服务
type OrderEventsConsumer struct {
	reader mq.MessageReader
	appSvc *application.InventoryApplicationService
	wg     sync.WaitGroup
}

func NewOrderEventsConsumer(reader mq.MessageReader, appSvc *application.InventoryApplicationService) *OrderEventsConsumer {
	return &OrderEventsConsumer{reader: reader, appSvc: appSvc}
}

// Start 在后台消费，直到 ctx 结束
func (c *OrderEventsConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Msg("✅ order events consumer started")
		for {
			// 使用 FetchMessage 而不是 ReadMessage，以便处理完成后再提交
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 order events consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not fetch message, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			c.processMessage(ctx, msg)

			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit message")
			}
		}
	}()
}

// Stop 等待消费循环退出并关闭 reader；调用前应先取消 Start 的 ctx
func (c *OrderEventsConsumer) Stop() error {
	c.wg.Wait()
	return c.reader.Close()
}

// processMessage 反序列化消息并调用应用服务；无法解析的消息记录后跳过
func (c *OrderEventsConsumer) processMessage(parent context.Context, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(parent, msg.Headers)

	event, err := decodeOrderEvent(msg.Value)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).
			Msg("failed to unmarshal order event, skipping")
		return
	}
	if err := c.appSvc.HandleOrderEvent(ctx, msg.Topic, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("topic", msg.Topic).Msg("order event rejected")
	}
}
