package interfaces

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"eventshop/internal/pkg/httpclient"
	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/pkg/rpc"
	"eventshop/internal/pkg/state"
	inventoryapi "eventshop/internal/service/inventory/api"
	inventoryapp "eventshop/internal/service/inventory/application"
	inventoryif "eventshop/internal/service/inventory/interfaces"
	"eventshop/internal/service/order/api"
	"eventshop/internal/service/order/application"
	"eventshop/internal/service/order/infrastructure"
	"eventshop/internal/service/order/infrastructure/adapter"
)

func dialBufconn(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(rpc.ServerOptions(rpc.NewWorkerPool(10, nil))...)
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := rpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// startStack 启动真实的库存服务与订单服务，订单服务通过 gRPC 检查库存
func startStack(t *testing.T) (api.OrderServiceClient, *pubsub.MemoryBus) {
	t.Helper()
	inventorySvc := inventoryapp.NewInventoryApplicationService(state.NewMemoryStore(), pubsub.NewMemoryBus(), nil)
	inventorySvc.SeedCatalog(context.Background(), inventoryapp.DefaultCatalog())
	inventoryConn := dialBufconn(t, func(s *grpc.Server) {
		inventoryapi.RegisterInventoryServiceServer(s, inventoryif.NewInventoryGRPCHandler(inventorySvc))
	})

	bus := pubsub.NewMemoryBus()
	orderSvc := application.NewOrderApplicationService(
		infrastructure.NewStoreOrderRepository(state.NewMemoryStore()),
		adapter.NewInventoryGRPCAdapter(inventoryapi.NewInventoryServiceClient(inventoryConn)),
		bus, nil,
	)
	orderConn := dialBufconn(t, func(s *grpc.Server) {
		api.RegisterOrderServiceServer(s, NewOrderGRPCHandler(orderSvc))
	})
	return api.NewOrderServiceClient(orderConn), bus
}

func TestOrderGRPC_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client, bus := startStack(t)

	created, err := client.CreateOrder(ctx, &api.CreateOrderRequest{
		CustomerID:    "cust-1",
		CustomerEmail: "cust-1@example.com",
		Items: []*api.OrderItem{
			{ProductID: "prod-001", ProductName: "Laptop Computer", Quantity: 2, UnitPrice: 999.99},
		},
	})
	require.NoError(t, err)
	require.True(t, created.Success, created.Message)
	assert.Equal(t, "ORDER_STATUS_PENDING", created.Order.Status)
	assert.InDelta(t, 1999.98, created.Order.TotalAmount, 1e-9)
	assert.InDelta(t, 1999.98, created.Order.Items[0].TotalPrice, 1e-9)
	assert.Len(t, bus.Topic("order.created"), 1)

	updated, err := client.UpdateOrder(ctx, &api.UpdateOrderRequest{OrderID: created.Order.OrderID, Status: "confirmed"})
	require.NoError(t, err)
	require.True(t, updated.Success)
	assert.Equal(t, "ORDER_STATUS_CONFIRMED", updated.Order.Status)

	cancelled, err := client.CancelOrder(ctx, &api.CancelOrderRequest{OrderID: created.Order.OrderID, Reason: "duplicate"})
	require.NoError(t, err)
	assert.True(t, cancelled.Success)
	assert.Equal(t, "Order cancelled successfully", cancelled.Message)

	got, err := client.GetOrder(ctx, &api.GetOrderRequest{OrderID: created.Order.OrderID})
	require.NoError(t, err)
	assert.Equal(t, "ORDER_STATUS_CANCELLED", got.Order.Status)
	assert.Equal(t, "duplicate", got.Order.Notes)
	assert.Len(t, bus.Topic("order.cancelled"), 1)
}

func TestOrderGRPC_InsufficientInventory(t *testing.T) {
	client, bus := startStack(t)

	created, err := client.CreateOrder(context.Background(), &api.CreateOrderRequest{
		CustomerID: "cust-1",
		Items:      []*api.OrderItem{{ProductID: "prod-001", Quantity: 51, UnitPrice: 1}},
	})
	require.NoError(t, err)
	assert.False(t, created.Success)
	assert.Equal(t, "Insufficient inventory", created.Message)
	assert.Equal(t, "ORDER_STATUS_FAILED", created.Order.Status)
	assert.Empty(t, bus.Messages())
}

func TestOrderGRPC_UnknownProductIsUnavailable(t *testing.T) {
	client, _ := startStack(t)

	created, err := client.CreateOrder(context.Background(), &api.CreateOrderRequest{
		CustomerID: "cust-1",
		Items:      []*api.OrderItem{{ProductID: "prod-404", Quantity: 1, UnitPrice: 1}},
	})
	require.NoError(t, err)
	assert.False(t, created.Success)
}

func TestOrderGRPC_ListOrdersPaging(t *testing.T) {
	ctx := context.Background()
	client, _ := startStack(t)

	for i := 0; i < 3; i++ {
		_, err := client.CreateOrder(ctx, &api.CreateOrderRequest{
			CustomerID: "cust-1",
			Items:      []*api.OrderItem{{ProductID: "prod-002", Quantity: 1, UnitPrice: 29.99}},
		})
		require.NoError(t, err)
	}

	first, err := client.ListOrders(ctx, &api.ListOrdersRequest{CustomerID: "cust-1", PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(3), first.TotalCount)
	assert.Len(t, first.Orders, 2)
	assert.Equal(t, "2", first.NextPageToken)

	second, err := client.ListOrders(ctx, &api.ListOrdersRequest{CustomerID: "cust-1", PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextPageToken)

	_, err = client.ListOrders(ctx, &api.ListOrdersRequest{CustomerID: "cust-1", PageToken: "abc"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOrderGRPC_GetOrderNotFound(t *testing.T) {
	client, _ := startStack(t)

	got, err := client.GetOrder(context.Background(), &api.GetOrderRequest{OrderID: "missing"})
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "Order not found", got.Message)
	assert.Nil(t, got.Order)
}

func TestOrderHTTP_CreateOrder(t *testing.T) {
	inventorySvc := inventoryapp.NewInventoryApplicationService(state.NewMemoryStore(), pubsub.NewMemoryBus(), nil)
	inventorySvc.SeedCatalog(context.Background(), inventoryapp.DefaultCatalog())
	inventoryMux := http.NewServeMux()
	inventoryif.NewInventoryHTTPHandler(inventorySvc, nil, prometheus.NewRegistry(), "pubsub", nil).RegisterRoutes(inventoryMux)
	inventorySrv := httptest.NewServer(inventoryMux)
	defer inventorySrv.Close()

	orderSvc := application.NewOrderApplicationService(
		infrastructure.NewStoreOrderRepository(state.NewMemoryStore()),
		adapter.NewInventoryHTTPAdapter(httpclient.NewClient(nil), inventorySrv.URL),
		pubsub.NewMemoryBus(), nil,
	)
	mux := http.NewServeMux()
	NewOrderHTTPHandler(NewOrderGRPCHandler(orderSvc), prometheus.NewRegistry()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	body := `{"customer_id":"cust-1","items":[{"product_id":"prod-003","quantity":75,"unit_price":149.99}]}`
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = httptest.NewRecorder()
	body = `{"customer_id":"cust-1","items":[{"product_id":"prod-003","quantity":76,"unit_price":149.99}]}`
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Insufficient inventory"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
