// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog，所有日志带上 service 字段
func Init(serviceName, level string) {
	InitWithWriter(os.Stdout, serviceName, level)
}

// InitWithWriter 与 Init 相同，但允许指定输出（测试中使用 buffer）
func InitWithWriter(w io.Writer, serviceName, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zlog.Logger = zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	zerolog.DefaultContextLogger = &zlog.Logger
}

// Ctx 返回 context 中的 logger；若 context 里有活跃的 span，则附加 trace_id
func Ctx(ctx context.Context) *zerolog.Logger {
	base := fromContext(ctx)
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return base
	}
	l := base.With().Str("trace_id", spanCtx.TraceID().String()).Logger()
	return &l
}

// WithContext 把携带固定字段的 logger 存入 context。trace_id 不固化，由 Ctx 按当前 span 追加
func WithContext(ctx context.Context, fields map[string]string) context.Context {
	lc := fromContext(ctx).With()
	for k, v := range fields {
		lc = lc.Str(k, v)
	}
	l := lc.Logger()
	return l.WithContext(ctx)
}

func fromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &zlog.Logger
	}
	return l
}
