// internal/pkg/rpc/interceptor.go
package rpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
)

// WorkerPool 限制同时处理的请求数，超出的请求排队等待空闲 worker
type WorkerPool struct {
	sem     *semaphore.Weighted
	metrics *metrics.Metrics
}

func NewWorkerPool(size int, m *metrics.Metrics) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(size)), metrics: m}
}

func (p *WorkerPool) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		defer p.sem.Release(1)
		p.metrics.WorkerAcquired()
		defer p.metrics.WorkerReleased()
		return handler(ctx, req)
	}
}

// RecoveryInterceptor 把 handler 中的 panic 转成 Internal，单个请求失败不影响服务
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Ctx(ctx).Error().
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", debug.Stack()).
					Msg("🚨 panic while handling request")
				err = status.Errorf(codes.Internal, "Internal error: %v", r)
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor 记录每个请求的方法、耗时和状态码
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = logger.WithContext(ctx, map[string]string{"grpc_method": info.FullMethod})
		resp, err := handler(ctx, req)
		code := status.Code(err)
		ev := logger.Ctx(ctx).Info()
		if code != codes.OK {
			ev = logger.Ctx(ctx).Error().Err(err)
		}
		ev.Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc request handled")
		return resp, err
	}
}

// ServerOptions 组合服务端拦截器：追踪 -> 日志 -> 恢复 -> worker 池
func ServerOptions(pool *WorkerPool) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			TracingServerInterceptor(),
			LoggingInterceptor(),
			RecoveryInterceptor(),
			pool.UnaryServerInterceptor(),
		),
	}
}
