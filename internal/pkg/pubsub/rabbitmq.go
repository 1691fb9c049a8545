// internal/pkg/pubsub/rabbitmq.go
package pubsub

import (
	"context"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"eventshop/internal/pkg/logger"
)

const rabbitExchangeType = "topic"

// AMQPChannel 是 amqp.Channel 中发布所需的子集
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQBus 把事件发布到 topic exchange，routing key 即事件类型（如 inventory.reserved）
type RabbitMQBus struct {
	conn     *amqp.Connection
	ch       AMQPChannel
	exchange string
}

// DialRabbitMQ 建立连接并声明 exchange，容器启动较慢时重试几次
func DialRabbitMQ(ctx context.Context, url, exchange string) (*RabbitMQBus, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("rabbitmq not reachable, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "connect rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open rabbitmq channel")
	}
	if err := ch.ExchangeDeclare(exchange, rabbitExchangeType, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	bus := NewRabbitMQBus(ch, exchange)
	bus.conn = conn
	return bus, nil
}

func NewRabbitMQBus(ch AMQPChannel, exchange string) *RabbitMQBus {
	return &RabbitMQBus{ch: ch, exchange: exchange}
}

func (b *RabbitMQBus) Publish(ctx context.Context, topic string, payload []byte) error {
	err := b.ch.PublishWithContext(ctx, b.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         topic,
		Body:         payload,
	})
	if err != nil {
		return errors.Wrapf(err, "rabbitmq publish %s", topic)
	}
	return nil
}

func (b *RabbitMQBus) Close() error {
	err := b.ch.Close()
	if b.conn != nil {
		if cerr := b.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
