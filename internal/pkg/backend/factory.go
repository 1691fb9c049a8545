// internal/pkg/backend/factory.go
package backend

import (
	"context"
	"sync"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/pkg/errors"

	"eventshop/internal/pkg/bootstrap"
	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/pkg/redis"
	"eventshop/internal/pkg/state"
)

const (
	KindMemory   = "memory"
	KindRedis    = "redis"
	KindDapr     = "dapr"
	KindMySQL    = "mysql"
	KindKafka    = "kafka"
	KindRabbitMQ = "rabbitmq"
)

// Factory 按配置创建存储与事件总线，并负责在关停时统一释放
type Factory struct {
	infra   bootstrap.InfraConfig
	metrics *metrics.Metrics

	mu      sync.Mutex
	dapr    dapr.Client
	closers []func() error
}

func NewFactory(infra bootstrap.InfraConfig, m *metrics.Metrics) *Factory {
	return &Factory{infra: infra, metrics: m}
}

// Dapr 返回共享的 sidecar 客户端，首次调用时连接
func (f *Factory) Dapr() (dapr.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dapr != nil {
		return f.dapr, nil
	}
	c, err := dapr.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "connect dapr sidecar")
	}
	f.dapr = c
	f.closers = append(f.closers, func() error { c.Close(); return nil })
	return c, nil
}

// Store 创建 key/value 存储: redis | dapr | mysql | memory
func (f *Factory) Store(ctx context.Context, kind string) (state.VersionedStore, error) {
	switch kind {
	case KindMemory:
		return state.NewMemoryStore(), nil
	case KindRedis:
		rc, err := redis.NewClient(ctx, f.infra.Redis.Addrs, f.infra.Redis.Password, f.infra.Redis.DB)
		if err != nil {
			return nil, err
		}
		f.onClose(rc.Close)
		store, err := state.NewRedisStore(rc)
		if err != nil {
			return nil, err
		}
		return store, nil
	case KindDapr:
		c, err := f.Dapr()
		if err != nil {
			return nil, err
		}
		return state.NewDaprStore(c, f.infra.Dapr.StateStore), nil
	case KindMySQL:
		db, err := state.OpenMySQL(state.MySQLOptions{
			Host:     f.infra.MySQL.Host,
			Port:     f.infra.MySQL.Port,
			User:     f.infra.MySQL.User,
			Password: f.infra.MySQL.Password,
			Database: f.infra.MySQL.Database,
		})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			f.onClose(sqlDB.Close)
		}
		return state.NewGormStore(db), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", kind)
	}
}

// Bus 创建事件总线: kafka | rabbitmq | dapr | memory
func (f *Factory) Bus(ctx context.Context, kind string) (pubsub.Publisher, error) {
	var bus pubsub.Publisher
	switch kind {
	case KindMemory:
		bus = pubsub.NewMemoryBus()
	case KindKafka:
		bus = pubsub.NewKafkaBus(f.infra.Kafka.Brokers, f.metrics)
	case KindRabbitMQ:
		rb, err := pubsub.DialRabbitMQ(ctx, f.infra.RabbitMQ.URL, f.infra.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		bus = rb
	case KindDapr:
		c, err := f.Dapr()
		if err != nil {
			return nil, err
		}
		bus = pubsub.NewDaprBus(c, f.infra.Dapr.PubSub)
	default:
		return nil, errors.Errorf("unknown bus backend %q", kind)
	}
	f.onClose(bus.Close)
	return bus, nil
}

// Close 按创建的逆序释放资源
func (f *Factory) Close() {
	f.mu.Lock()
	closers := f.closers
	f.closers = nil
	f.mu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Ctx(context.Background()).Error().Err(err).Msg("failed to close backend")
		}
	}
}

func (f *Factory) onClose(fn func() error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closers = append(f.closers, fn)
}
