// internal/pkg/pubsub/memory.go
package pubsub

import (
	"context"
	"sync"
)

// Message 是 MemoryBus 记录的一条已发布消息
type Message struct {
	Topic   string
	Payload []byte
}

// MemoryBus 记录所有发布的消息，用于测试和本地开发。设置 Err 可模拟 broker 故障。
type MemoryBus struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	return nil
}

func (b *MemoryBus) Close() error { return nil }

// FailWith 之后的 Publish 都返回 err；传 nil 恢复
func (b *MemoryBus) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *MemoryBus) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Topic 返回发往某个 topic 的消息
func (b *MemoryBus) Topic(topic string) []Message {
	var out []Message
	for _, m := range b.Messages() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
