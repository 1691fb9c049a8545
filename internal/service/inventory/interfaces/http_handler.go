// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/pubsub"
	"eventshop/internal/service/inventory/api"
	"eventshop/internal/service/inventory/application"
	"eventshop/internal/service/inventory/domain"
)

// InventoryHTTPHandler 是管理端口上的 HTTP 入口：健康检查、指标、事件流、sidecar 调用与订阅
type InventoryHTTPHandler struct {
	service  *application.InventoryApplicationService
	hub      *pubsub.Hub
	gatherer prometheus.Gatherer

	pubsubName string
	topics     []string
}

func NewInventoryHTTPHandler(service *application.InventoryApplicationService, hub *pubsub.Hub, gatherer prometheus.Gatherer, pubsubName string, topics []string) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		service:    service,
		hub:        hub,
		gatherer:   gatherer,
		pubsubName: pubsubName,
		topics:     topics,
	}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *InventoryHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	if h.hub != nil {
		mux.HandleFunc("/events", h.hub.ServeWS)
	}
	mux.HandleFunc("/check-availability", h.checkAvailability)
	mux.HandleFunc("/dapr/subscribe", h.daprSubscribe)
	mux.HandleFunc("/orders/events", h.daprOrderEvent)
}

// checkAvailability 供 sidecar 服务调用，响应与 gRPC 的 CheckAvailability 相同
func (h *InventoryHTTPHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req api.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.CheckAvailability(ctx, req.ProductID, req.Quantity)
	if err != nil {
		http.Error(w, "Internal error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.CheckAvailabilityResponse{
		Available:         res.Available,
		AvailableQuantity: res.AvailableQuantity,
		Message:           res.Message,
	})
}

type daprSubscription struct {
	PubsubName string `json:"pubsubname"`
	Topic      string `json:"topic"`
	Route      string `json:"route"`
}

// daprSubscribe 是 sidecar 启动时拉取的订阅列表
func (h *InventoryHTTPHandler) daprSubscribe(w http.ResponseWriter, r *http.Request) {
	subs := make([]daprSubscription, 0, len(h.topics))
	for _, topic := range h.topics {
		subs = append(subs, daprSubscription{PubsubName: h.pubsubName, Topic: topic, Route: "/orders/events"})
	}
	writeJSON(w, http.StatusOK, subs)
}

// daprTopicEnvelope 是 sidecar 投递的 CloudEvent 中用到的字段
type daprTopicEnvelope struct {
	ID    string          `json:"id"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func (h *InventoryHTTPHandler) daprOrderEvent(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var envelope daprTopicEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("undecodable cloud event, dropping")
		writeJSON(w, http.StatusOK, map[string]string{"status": "DROP"})
		return
	}
	event, err := decodeOrderEvent(envelope.Data)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("topic", envelope.Topic).Msg("undecodable order event, dropping")
		writeJSON(w, http.StatusOK, map[string]string{"status": "DROP"})
		return
	}
	if err := h.service.HandleOrderEvent(ctx, envelope.Topic, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("topic", envelope.Topic).Msg("order event rejected")
		writeJSON(w, http.StatusOK, map[string]string{"status": "DROP"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "SUCCESS"})
}

// decodeOrderEvent 兼容两种形式：直接的 JSON 对象，或被再次编码成字符串的 JSON
func decodeOrderEvent(raw json.RawMessage) (*domain.OrderEvent, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}
	var event domain.OrderEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
