// internal/pkg/pubsub/fanout.go
package pubsub

import (
	"context"
	"encoding/json"
)

// feedFrame 是推送给 websocket 客户端的帧
type feedFrame struct {
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// FanoutBus 先发布到主总线，再把同一事件推给 Hub 上的实时订阅者
type FanoutBus struct {
	primary Publisher
	hub     *Hub
}

func NewFanoutBus(primary Publisher, hub *Hub) *FanoutBus {
	return &FanoutBus{primary: primary, hub: hub}
}

func (b *FanoutBus) Publish(ctx context.Context, topic string, payload []byte) error {
	err := b.primary.Publish(ctx, topic, payload)
	if frame, merr := json.Marshal(feedFrame{Topic: topic, Event: payload}); merr == nil {
		b.hub.Broadcast(frame)
	}
	return err
}

func (b *FanoutBus) Close() error {
	return b.primary.Close()
}
