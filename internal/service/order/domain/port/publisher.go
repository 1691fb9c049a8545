// internal/service/order/domain/port/publisher.go
package port

import "context"

// EventPublisher 把序列化后的事件发布到 topic
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
