// internal/pkg/pubsub/dapr.go
package pubsub

import (
	"context"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/pkg/errors"
)

// DaprPublisher 是 dapr.Client 中发布事件的子集
type DaprPublisher interface {
	PublishEvent(ctx context.Context, pubsubName, topicName string, data interface{}, opts ...dapr.PublishEventOption) error
}

// DaprBus 通过 sidecar 的 pubsub 组件发布
type DaprBus struct {
	client     DaprPublisher
	pubsubName string
}

func NewDaprBus(client DaprPublisher, pubsubName string) *DaprBus {
	return &DaprBus{client: client, pubsubName: pubsubName}
}

func (b *DaprBus) Publish(ctx context.Context, topic string, payload []byte) error {
	err := b.client.PublishEvent(ctx, b.pubsubName, topic, payload,
		dapr.PublishEventWithContentType("application/json"))
	if err != nil {
		return errors.Wrapf(err, "dapr publish %s/%s", b.pubsubName, topic)
	}
	return nil
}

// Close 不关闭共享的 dapr 客户端，由创建者负责
func (b *DaprBus) Close() error { return nil }
