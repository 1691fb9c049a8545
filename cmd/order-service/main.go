// cmd/order-service/main.go
package main

import (
	"context"

	"github.com/pkg/errors"

	"eventshop/internal/pkg/backend"
	"eventshop/internal/pkg/bootstrap"
	"eventshop/internal/pkg/httpclient"
	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/rpc"
	inventoryapi "eventshop/internal/service/inventory/api"
	"eventshop/internal/service/order/api"
	"eventshop/internal/service/order/application"
	"eventshop/internal/service/order/domain/port"
	"eventshop/internal/service/order/infrastructure"
	"eventshop/internal/service/order/infrastructure/adapter"
	"eventshop/internal/service/order/interfaces"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		ConfigPath:       "configs/order-service.yaml",
		RegisterHandlers: register,
	})
}

func register(ctx context.Context, app *bootstrap.AppCtx) (func(), error) {
	cfg := app.Config
	var cleanups []func()
	cleanup := func() {
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

	store, err := factory.Store(ctx, cfg.Order.StoreBackend)
	if err != nil {
		return fail(err)
	}
	bus, err := factory.Bus(ctx, cfg.Order.BusBackend)
	if err != nil {
		return fail(err)
	}

	// 2. 库存服务出站适配器
	var inventory port.InventoryChecker
	switch cfg.Order.InventoryTransport {
	case "dapr":
		c, err := factory.Dapr()
		if err != nil {
			return fail(err)
		}
		inventory = adapter.NewInventoryDaprAdapter(c, cfg.Order.InventoryAppID)
	case "http":
		inventory = adapter.NewInventoryHTTPAdapter(httpclient.NewClient(app.Tracer), cfg.Order.InventoryHTTPURL)
	default:
		target := cfg.Order.InventoryAddress
		if app.Nacos != nil {
			// 注册中心可用时以注册的实例为准
			if addr, err := app.Nacos.DiscoverServiceInstance(cfg.Order.InventoryAppID); err == nil {
				target = addr
			} else {
				logger.Ctx(ctx).Warn().Err(err).Str("fallback", target).Msg("inventory discovery failed, using configured address")
			}
		}
		conn, err := rpc.NewClient(target)
		if err != nil {
			return fail(errors.Wrapf(err, "dial inventory service %s", target))
		}
		cleanups = append(cleanups, func() { _ = conn.Close() })
		inventory = adapter.NewInventoryGRPCAdapter(inventoryapi.NewInventoryServiceClient(conn))
	}

	// 3. 应用服务与入站适配器
	svc := application.NewOrderApplicationService(
		infrastructure.NewStoreOrderRepository(store), inventory, bus, app.Tracer,
		application.WithMetrics(app.Metrics),
	)
	grpcHandler := interfaces.NewOrderGRPCHandler(svc)
	api.RegisterOrderServiceServer(app.GRPC, grpcHandler)
	interfaces.NewOrderHTTPHandler(grpcHandler, app.Registry).RegisterRoutes(app.Mux)

	logger.Ctx(ctx).Info().
		Str("store", cfg.Order.StoreBackend).
		Str("bus", cfg.Order.BusBackend).
		Str("inventory_transport", cfg.Order.InventoryTransport).
		Msg("✅ order service assembled")
	return cleanup, nil
}
