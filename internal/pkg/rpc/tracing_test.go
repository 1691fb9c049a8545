package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func useTestTracing(t *testing.T) {
	t.Helper()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestTracingServerInterceptor_ContinuesUpstreamTrace(t *testing.T) {
	useTestTracing(t)
	md := metadata.Pairs("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var seen trace.SpanContext
	_, err := TracingServerInterceptor()(ctx, nil, testInfo, func(ctx context.Context, req any) (any, error) {
		seen = trace.SpanContextFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", seen.TraceID().String())
	assert.NotEqual(t, "00f067aa0ba902b7", seen.SpanID().String())
}

func TestTracingServerInterceptor_StartsNewTrace(t *testing.T) {
	useTestTracing(t)

	var seen trace.SpanContext
	_, err := TracingServerInterceptor()(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		seen = trace.SpanContextFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, seen.HasTraceID())
}

func TestTracingClientInterceptor_InjectsTraceparent(t *testing.T) {
	useTestTracing(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "caller")
	defer span.End()
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", "req-1")

	var sent metadata.MD
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		sent, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}
	require.NoError(t, TracingClientInterceptor()(ctx, "/test.Service/Method", nil, nil, nil, invoker))

	require.Len(t, sent.Get("traceparent"), 1)
	assert.Contains(t, sent.Get("traceparent")[0], span.SpanContext().TraceID().String())
	assert.Equal(t, []string{"req-1"}, sent.Get("x-request-id"))
}
