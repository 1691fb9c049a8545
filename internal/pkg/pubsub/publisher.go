// internal/pkg/pubsub/publisher.go
package pubsub

import "context"

// Publisher 把已经序列化好的事件投递到 topic
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}
