// internal/pkg/pubsub/kafka.go
package pubsub

import (
	"context"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/pkg/mq"
)

// KafkaBus 使用异步 writer，Publish 不等待 broker 确认；投递失败在回调中记录
type KafkaBus struct {
	writer mq.MessageWriter
}

func NewKafkaBus(brokers []string, m *metrics.Metrics) *KafkaBus {
	return NewKafkaBusWithWriter(mq.NewAsyncKafkaWriter(brokers, deliveryReport(m)))
}

// NewKafkaBusWithWriter 允许注入 writer（测试中使用假实现）
func NewKafkaBusWithWriter(w mq.MessageWriter) *KafkaBus {
	return &KafkaBus{writer: w}
}

func (b *KafkaBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := mq.ProduceMessage(ctx, b.writer, topic, nil, payload); err != nil {
		return errors.Wrapf(err, "kafka produce to %s", topic)
	}
	return nil
}

func (b *KafkaBus) Close() error {
	return b.writer.Close()
}

func deliveryReport(m *metrics.Metrics) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, msg := range messages {
			m.PublishFailed(msg.Topic)
			logger.Ctx(context.Background()).Error().Err(err).
				Str("topic", msg.Topic).
				Msg("❌ kafka delivery failed")
		}
	}
}
