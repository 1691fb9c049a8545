package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"eventshop/internal/pkg/httpclient"
	inventoryapi "eventshop/internal/service/inventory/api"
	"eventshop/internal/service/order/domain/port"
)

type fakeInvoker struct {
	appID, method, verb string
	content             *dapr.DataContent
	out                 []byte
	err                 error
}

func (f *fakeInvoker) InvokeMethodWithContent(_ context.Context, appID, methodName, verb string, content *dapr.DataContent) ([]byte, error) {
	f.appID, f.method, f.verb, f.content = appID, methodName, verb, content
	return f.out, f.err
}

func TestInventoryDaprAdapter(t *testing.T) {
	invoker := &fakeInvoker{out: []byte(`{"available":true,"available_quantity":50}`)}
	adapter := NewInventoryDaprAdapter(invoker, "inventory-service")

	ok, err := adapter.CheckAvailability(context.Background(), "prod-001", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "inventory-service", invoker.appID)
	assert.Equal(t, "check-availability", invoker.method)
	assert.Equal(t, "application/json", invoker.content.ContentType)
	assert.JSONEq(t, `{"product_id":"prod-001","quantity":3}`, string(invoker.content.Data))
}

func TestInventoryDaprAdapter_MissingAvailableIsUnavailable(t *testing.T) {
	adapter := NewInventoryDaprAdapter(&fakeInvoker{out: []byte(`{"message":"Product not found"}`)}, "inventory-service")

	ok, err := adapter.CheckAvailability(context.Background(), "prod-404", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInventoryDaprAdapter_Errors(t *testing.T) {
	_, err := NewInventoryDaprAdapter(&fakeInvoker{err: errors.New("sidecar down")}, "inventory-service").
		CheckAvailability(context.Background(), "prod-001", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrMalformedInventoryResponse)

	_, err = NewInventoryDaprAdapter(&fakeInvoker{out: []byte(`not json`)}, "inventory-service").
		CheckAvailability(context.Background(), "prod-001", 1)
	assert.ErrorIs(t, err, port.ErrMalformedInventoryResponse)
}

func TestInventoryHTTPAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check-availability", r.URL.Path)
		var req availabilityRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]any{"available": req.Quantity <= 10})
	}))
	defer srv.Close()

	adapter := NewInventoryHTTPAdapter(httpclient.NewClient(nil), srv.URL+"/")
	ok, err := adapter.CheckAvailability(context.Background(), "prod-001", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.CheckAvailability(context.Background(), "prod-001", 11)
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeInventoryClient struct {
	inventoryapi.InventoryServiceClient
	resp *inventoryapi.CheckAvailabilityResponse
	err  error
}

func (f *fakeInventoryClient) CheckAvailability(context.Context, *inventoryapi.CheckAvailabilityRequest, ...grpc.CallOption) (*inventoryapi.CheckAvailabilityResponse, error) {
	return f.resp, f.err
}

func TestInventoryGRPCAdapter(t *testing.T) {
	ok, err := NewInventoryGRPCAdapter(&fakeInventoryClient{
		resp: &inventoryapi.CheckAvailabilityResponse{Available: false, Message: "Insufficient inventory"},
	}).CheckAvailability(context.Background(), "prod-001", 500)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewInventoryGRPCAdapter(&fakeInventoryClient{err: errors.New("unavailable")}).
		CheckAvailability(context.Background(), "prod-001", 1)
	assert.Error(t, err)
}
