// cmd/inventory-service/main.go
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/backend"
	"eventshop/internal/pkg/bootstrap"
	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/mq"
	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/pkg/rules"
	"eventshop/internal/pkg/zookeeper"
	"eventshop/internal/service/inventory/api"
	"eventshop/internal/service/inventory/application"
	"eventshop/internal/service/inventory/infrastructure"
	"eventshop/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	lockWait    = 5 * time.Second
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		ConfigPath:       "configs/inventory-service.yaml",
		RegisterHandlers: register,
	})
}

func register(parent context.Context, app *bootstrap.AppCtx) (func(), error) {
	cfg := app.Config
	ctx, cancel := context.WithCancel(parent)
	var cleanups []func()
	cleanup := func() {
		cancel()
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (func(), error) {
		cleanup()
		return nil, err
	}

	// 1. 存储与事件总线
	factory := backend.NewFactory(cfg.Infra, app.Metrics)
	cleanups = append(cleanups, factory.Close)

	store, err := factory.Store(ctx, cfg.Inventory.StoreBackend)
	if err != nil {
		return fail(err)
	}
	bus, err := factory.Bus(ctx, cfg.Inventory.BusBackend)
	if err != nil {
		return fail(err)
	}

	// 事件同时推送给 /events 上的 websocket 客户端
	hub := pubsub.NewHub()
	go hub.Run(ctx)
	publisher := pubsub.NewFanoutBus(bus, hub)

	// 2. 应用服务
	opts := []application.Option{application.WithMetrics(app.Metrics)}
	switch cfg.Inventory.Concurrency {
	case "mutex":
		opts = append(opts, application.WithLocker(infrastructure.NewKeyedMutex()))
	case "cas":
		opts = append(opts, application.WithCompareAndSwap(store, cfg.Inventory.CASMaxRetries))
	case "zookeeper":
		timeout, err := time.ParseDuration(cfg.Infra.Zookeeper.SessionTimeout)
		if err != nil {
			return fail(errors.Wrap(err, "parse zookeeper session timeout"))
		}
		conn, err := zookeeper.Connect(ctx, cfg.Infra.Zookeeper.Servers, timeout)
		if err != nil {
			return fail(err)
		}
		cleanups = append(cleanups, conn.Close)
		opts = append(opts, application.WithLocker(infrastructure.NewZookeeperLocker(conn, lockWait)))
	}

	lowStock, err := rules.NewEvaluator(cfg.Inventory.LowStockRule)
	if err != nil {
		return fail(errors.Wrap(err, "compile low stock rule"))
	}
	if lowStock != nil {
		opts = append(opts, application.WithLowStockRule(lowStock))
	}

	svc := application.NewInventoryApplicationService(store, publisher, app.Tracer, opts...)
	if cfg.Inventory.SeedOnStart {
		svc.SeedCatalog(ctx, seedCatalog(cfg.Inventory.Seed))
	}

	// 3. 入站适配器
	api.RegisterInventoryServiceServer(app.GRPC, interfaces.NewInventoryGRPCHandler(svc))
	interfaces.NewInventoryHTTPHandler(svc, hub, app.Registry, cfg.Infra.Dapr.PubSub, cfg.Inventory.SubscribeTo).
		RegisterRoutes(app.Mux)

	// dapr 模式下订单事件由 sidecar 投递到 /orders/events，kafka 模式下直接消费
	if cfg.Inventory.BusBackend == backend.KindKafka && len(cfg.Inventory.SubscribeTo) > 0 {
		reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.GroupID, cfg.Inventory.SubscribeTo...)
		consumer := interfaces.NewOrderEventsConsumer(reader, svc)
		consumer.Start(ctx)
		cleanups = append(cleanups, func() {
			cancel()
			if err := consumer.Stop(); err != nil {
				logger.Ctx(parent).Error().Err(err).Msg("failed to close order events consumer")
			}
		})
	}

	logger.Ctx(ctx).Info().
		Str("store", cfg.Inventory.StoreBackend).
		Str("bus", cfg.Inventory.BusBackend).
		Str("concurrency", cfg.Inventory.Concurrency).
		Msg("✅ inventory service assembled")
	return cleanup, nil
}

// seedCatalog 未配置目录时使用内置的演示目录
func seedCatalog(seed []bootstrap.SeedProduct) []application.SeedProduct {
	if len(seed) == 0 {
		return application.DefaultCatalog()
	}
	out := make([]application.SeedProduct, 0, len(seed))
	for _, p := range seed {
		out = append(out, application.SeedProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  int32(p.Quantity), // Config.Validate 已限定在 int32 范围内
			UnitPrice: p.UnitPrice,
		})
	}
	return out
}
