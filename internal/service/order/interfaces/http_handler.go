// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"eventshop/internal/service/order/api"
)

// OrderHTTPHandler 封装了订单服务管理端口上的 HTTP 处理器
type OrderHTTPHandler struct {
	grpc     *OrderGRPCHandler
	gatherer prometheus.Gatherer
}

func NewOrderHTTPHandler(grpc *OrderGRPCHandler, gatherer prometheus.Gatherer) *OrderHTTPHandler {
	return &OrderHTTPHandler{grpc: grpc, gatherer: gatherer}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/orders", h.createOrder)
}

// createOrder 与 gRPC 的 CreateOrder 等价，便于 curl 调试
func (h *OrderHTTPHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req api.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.grpc.CreateOrder(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
