// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/metrics"
	"eventshop/internal/pkg/nacos"
	"eventshop/internal/pkg/rpc"
	"eventshop/internal/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// AppCtx 是注册回调能拿到的公共组件
type AppCtx struct {
	Config   *Config
	Mux      *http.ServeMux
	GRPC     *grpc.Server
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Nacos    *nacos.Client // nacos 未启用时为 nil
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName string
	ConfigPath  string // 为空时只使用默认值与环境变量
	// RegisterHandlers 注册 gRPC 服务和 HTTP 路由，返回的 cleanup 在关停时调用
	RegisterHandlers func(ctx context.Context, app *AppCtx) (cleanup func(), err error)
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	if err := Init(info.ConfigPath); err != nil {
		logger.Init(info.ServiceName, "info")
		logger.Ctx(context.Background()).Fatal().Err(err).Msg("failed to load config")
	}
	cfg := GetCurrentConfig()
	if info.ServiceName != "" && os.Getenv("SERVICE_NAME") == "" {
		cfg.App.ServiceName = info.ServiceName
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx, cfg, info.RegisterHandlers); err != nil {
		logger.Ctx(ctx).Fatal().Err(err).Str("service", cfg.App.ServiceName).Msg("service exited with error")
	}
}

// Run 启动 gRPC 与管理端 HTTP 服务，阻塞直到 ctx 结束或任一服务失败
func Run(ctx context.Context, cfg *Config, register func(ctx context.Context, app *AppCtx) (func(), error)) error {
	logger.Init(cfg.App.ServiceName, cfg.App.LogLevel)
	log := logger.Ctx(ctx)

	// 1. Tracer
	tp, err := tracing.InitTracerProvider(cfg.App.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		return errors.Wrap(err, "initialize tracer provider")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	// 2. 指标与 gRPC server
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, metricsNamespace(cfg.App.ServiceName))
	grpcServer := grpc.NewServer(rpc.ServerOptions(rpc.NewWorkerPool(cfg.App.WorkerPoolSize, m))...)

	app := &AppCtx{
		Config:   cfg,
		Mux:      http.NewServeMux(),
		GRPC:     grpcServer,
		Registry: reg,
		Metrics:  m,
		Tracer:   otel.Tracer(cfg.App.ServiceName),
	}

	// 3. 服务注册（可选），服务发现也需要它，所以先于业务组件创建
	if cfg.Infra.Nacos.Enabled {
		app.Nacos, err = nacos.NewNacosClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			return errors.Wrap(err, "initialize nacos client")
		}
		defer app.Nacos.Close()
	}

	cleanup, err := register(ctx, app)
	if err != nil {
		return errors.Wrap(err, "register handlers")
	}
	if cleanup != nil {
		defer cleanup()
	}

	grpcLis, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.App.GRPCPort))
	if err != nil {
		return errors.Wrapf(err, "listen on grpc port %d", cfg.App.GRPCPort)
	}
	httpServer := &http.Server{Addr: ":" + strconv.Itoa(cfg.App.HTTPPort), Handler: withRequestLogger(app.Mux)}

	if app.Nacos != nil {
		ip, err := outboundIP()
		if err != nil {
			return errors.Wrap(err, "get outbound IP address")
		}
		if err := app.Nacos.RegisterServiceInstance(cfg.App.ServiceName, ip, cfg.App.GRPCPort); err != nil {
			return err
		}
		defer func() {
			if err := app.Nacos.DeregisterServiceInstance(cfg.App.ServiceName, ip, cfg.App.GRPCPort); err != nil {
				log.Error().Err(err).Msg("Error deregistering from Nacos")
			}
		}()
	}

	// 4. 启动服务，ctx 结束后按顺序关停
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Int("port", cfg.App.GRPCPort).Msgf("%s gRPC listening", cfg.App.ServiceName)
		return grpcServer.Serve(grpcLis)
	})
	g.Go(func() error {
		log.Info().Int("port", cfg.App.HTTPPort).Msgf("%s admin HTTP listening", cfg.App.ServiceName)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msgf("🛑 Shutting down service %s...", cfg.App.ServiceName)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down http server")
		}
		gracefulStop(shutdownCtx, grpcServer)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	log.Info().Msgf("Service %s gracefully shut down.", cfg.App.ServiceName)
	return nil
}

// gracefulStop 等待进行中的请求结束，超时后强制停止
func gracefulStop(ctx context.Context, srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		srv.Stop()
	}
}

// outboundIP 返回本机访问外网时使用的地址，用于服务注册
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// withRequestLogger 让 handler 里的 logger.Ctx 带上请求方法和路径
func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithContext(r.Context(), map[string]string{
			"http_method": r.Method,
			"http_path":   r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// metricsNamespace 把 "inventory-service" 转为 "inventory_service"
func metricsNamespace(serviceName string) string {
	out := []byte(serviceName)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			out[i] = '_'
		}
	}
	return string(out)
}
