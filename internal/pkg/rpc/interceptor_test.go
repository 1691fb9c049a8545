package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

func TestWorkerPool_BlocksWhenFull(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	interceptor := pool.UnaryServerInterceptor()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
			close(entered)
			<-release
			return "first", nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := interceptor(ctx, nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return "second", nil
	})
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))

	close(release)
	<-done

	resp, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		return "third", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "third", resp)
}

func TestRecoveryInterceptor(t *testing.T) {
	_, err := RecoveryInterceptor()(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestJSONCodec(t *testing.T) {
	type msg struct {
		ProductID string `json:"product_id"`
		Quantity  int32  `json:"quantity"`
	}
	c := jsonCodec{}
	raw, err := c.Marshal(&msg{ProductID: "prod-001", Quantity: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":"prod-001","quantity":3}`, string(raw))

	var out msg
	require.NoError(t, c.Unmarshal(raw, &out))
	assert.Equal(t, "prod-001", out.ProductID)
	assert.Equal(t, "json", c.Name())
}
