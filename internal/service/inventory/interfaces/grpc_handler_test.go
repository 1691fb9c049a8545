package interfaces

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/pkg/rpc"
	"eventshop/internal/pkg/state"
	"eventshop/internal/service/inventory/api"
	"eventshop/internal/service/inventory/application"
	"eventshop/internal/service/inventory/domain/port"
)

// brokenStore 模拟存储不可用
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store unavailable")
}
func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("store unavailable") }
func (brokenStore) Delete(context.Context, string) error      { return errors.New("store unavailable") }

func newTestService(store port.RecordStore, bus port.EventPublisher) *application.InventoryApplicationService {
	svc := application.NewInventoryApplicationService(store, bus, nil)
	svc.SeedCatalog(context.Background(), application.DefaultCatalog())
	return svc
}

func startInventoryServer(t *testing.T, svc *application.InventoryApplicationService) api.InventoryServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(rpc.ServerOptions(rpc.NewWorkerPool(10, nil))...)
	api.RegisterInventoryServiceServer(srv, NewInventoryGRPCHandler(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := rpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return api.NewInventoryServiceClient(conn)
}

func TestInventoryGRPC_ReserveReleaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	bus := pubsub.NewMemoryBus()
	client := startInventoryServer(t, newTestService(state.NewMemoryStore(), bus))

	check, err := client.CheckAvailability(ctx, &api.CheckAvailabilityRequest{ProductID: "prod-001", Quantity: 10})
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Equal(t, int32(50), check.AvailableQuantity)

	reserved, err := client.ReserveInventory(ctx, &api.ReserveInventoryRequest{
		ProductID: "prod-001", Quantity: 10, OrderID: "order-1", CustomerID: "cust-1",
	})
	require.NoError(t, err)
	require.True(t, reserved.Success)
	assert.Equal(t, "Inventory reserved successfully", reserved.Message)

	got, err := client.GetInventory(ctx, &api.GetInventoryRequest{ProductID: "prod-001"})
	require.NoError(t, err)
	require.NotNil(t, got.Inventory)
	assert.Equal(t, int32(40), got.Inventory.AvailableQuantity)
	assert.Equal(t, int32(10), got.Inventory.ReservedQuantity)
	assert.NotEmpty(t, got.Inventory.LastUpdated)

	released, err := client.ReleaseInventory(ctx, &api.ReleaseInventoryRequest{
		ProductID: "prod-001", Quantity: 10, OrderID: "order-1", ReservationID: reserved.ReservationID,
	})
	require.NoError(t, err)
	assert.True(t, released.Success)

	updated, err := client.UpdateInventory(ctx, &api.UpdateInventoryRequest{ProductID: "prod-001", QuantityChange: 5, Reason: "restock"})
	require.NoError(t, err)
	require.True(t, updated.Success)
	assert.Equal(t, int32(55), updated.Inventory.AvailableQuantity)
	assert.Equal(t, int32(55), updated.Inventory.TotalQuantity)

	assert.Len(t, bus.Messages(), 3)
}

func TestInventoryGRPC_BusinessFailuresAreNotTransportErrors(t *testing.T) {
	ctx := context.Background()
	client := startInventoryServer(t, newTestService(state.NewMemoryStore(), pubsub.NewMemoryBus()))

	res, err := client.ReserveInventory(ctx, &api.ReserveInventoryRequest{ProductID: "prod-404", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Product not found", res.Message)

	res, err = client.ReserveInventory(ctx, &api.ReserveInventoryRequest{ProductID: "prod-001", Quantity: 500})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Insufficient inventory", res.Message)

	get, err := client.GetInventory(ctx, &api.GetInventoryRequest{ProductID: "prod-404"})
	require.NoError(t, err)
	assert.False(t, get.Success)
	assert.Nil(t, get.Inventory)
}

func TestInventoryGRPC_InternalErrors(t *testing.T) {
	ctx := context.Background()
	client := startInventoryServer(t, application.NewInventoryApplicationService(brokenStore{}, pubsub.NewMemoryBus(), nil))

	_, err := client.CheckAvailability(ctx, &api.CheckAvailabilityRequest{ProductID: "prod-001", Quantity: 1})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Contains(t, st.Message(), "Internal error")

	_, err = client.ReleaseInventory(ctx, &api.ReleaseInventoryRequest{ProductID: "prod-001", Quantity: 1})
	assert.Equal(t, codes.Internal, status.Code(err))

	// 服务在内部错误后仍然可用
	_, err = client.GetInventory(ctx, &api.GetInventoryRequest{ProductID: "prod-001"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestInventoryGRPC_InternalErrorCarriesTraceID(t *testing.T) {
	prev := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	client := startInventoryServer(t, application.NewInventoryApplicationService(brokenStore{}, pubsub.NewMemoryBus(), nil))

	var trailer metadata.MD
	_, err := client.GetInventory(context.Background(), &api.GetInventoryRequest{ProductID: "prod-001"}, grpc.Trailer(&trailer))
	assert.Equal(t, codes.Internal, status.Code(err))
	require.Len(t, trailer.Get(TraceIDTrailer), 1)
	assert.Len(t, trailer.Get(TraceIDTrailer)[0], 32)
}
