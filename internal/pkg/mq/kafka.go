// internal/pkg/mq/kafka.go
package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// MessageWriter 是 kafka.Writer 的最小子集，便于在测试中替换
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader 是 kafka.Reader 的最小子集
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaHeaderCarrier 让 kafka 消息头实现 propagation.TextMapCarrier
type KafkaHeaderCarrier []kafka.Header

func (c *KafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *KafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *KafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}

// InjectTraceContext 把当前追踪上下文写入消息头
func InjectTraceContext(ctx context.Context, headers *[]kafka.Header) {
	carrier := KafkaHeaderCarrier(*headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	*headers = carrier
}

// ExtractTraceContext 从消息头恢复上游的追踪上下文
func ExtractTraceContext(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := KafkaHeaderCarrier(headers)
	return otel.GetTextMapPropagator().Extract(ctx, &carrier)
}

// ProduceMessage 发送一条带追踪上下文的消息；topic 为空时使用 writer 上配置的 topic
func ProduceMessage(ctx context.Context, w MessageWriter, topic string, key, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	}
	InjectTraceContext(ctx, &msg.Headers)
	return w.WriteMessages(ctx, msg)
}

// NewKafkaWriter 创建一个同步 writer；topic 为空时由每条消息自己指定 topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		AllowAutoTopicCreation: topic == "",
	}
}

// NewAsyncKafkaWriter 在 NewKafkaWriter 的基础上开启异步模式，不绑定 topic。
// WriteMessages 立即返回，投递结果通过 completion 回调报告。
func NewAsyncKafkaWriter(brokers []string, completion func(messages []kafka.Message, err error)) *kafka.Writer {
	w := NewKafkaWriter(brokers, "")
	w.Balancer = &kafka.Hash{}
	w.Async = true
	w.Completion = completion
	return w
}

// NewKafkaReader 创建消费者组 reader，可同时订阅多个 topic
func NewKafkaReader(brokers []string, groupID string, topics ...string) *kafka.Reader {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	if len(topics) == 1 {
		cfg.Topic = topics[0]
	} else {
		cfg.GroupTopics = topics
	}
	return kafka.NewReader(cfg)
}
