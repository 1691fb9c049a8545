// internal/service/order/interfaces/grpc_handler.go
package interfaces

import (
	"context"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/tracing"
	"eventshop/internal/service/order/api"
	"eventshop/internal/service/order/application"
	"eventshop/internal/service/order/domain"
)

// OrderGRPCHandler 把 gRPC 请求转换为应用层调用
type OrderGRPCHandler struct {
	service *application.OrderApplicationService
}

func NewOrderGRPCHandler(service *application.OrderApplicationService) *OrderGRPCHandler {
	return &OrderGRPCHandler{service: service}
}

var _ api.OrderServiceServer = (*OrderGRPCHandler)(nil)

func (h *OrderGRPCHandler) CreateOrder(ctx context.Context, req *api.CreateOrderRequest) (*api.CreateOrderResponse, error) {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item == nil {
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	res, err := h.service.CreateOrder(ctx, application.CreateOrderCommand{
		CustomerID:      req.CustomerID,
		CustomerEmail:   req.CustomerEmail,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.CreateOrderResponse{Order: toAPIOrder(res.Order), Success: res.Success, Message: res.Message}, nil
}

func (h *OrderGRPCHandler) GetOrder(ctx context.Context, req *api.GetOrderRequest) (*api.GetOrderResponse, error) {
	res, err := h.service.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.GetOrderResponse{Order: toAPIOrder(res.Order), Success: res.Success, Message: res.Message}, nil
}

func (h *OrderGRPCHandler) UpdateOrder(ctx context.Context, req *api.UpdateOrderRequest) (*api.UpdateOrderResponse, error) {
	res, err := h.service.UpdateOrder(ctx, application.UpdateOrderCommand{
		OrderID: req.OrderID,
		Status:  domain.ParseStatus(req.Status),
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.UpdateOrderResponse{Order: toAPIOrder(res.Order), Success: res.Success, Message: res.Message}, nil
}

func (h *OrderGRPCHandler) CancelOrder(ctx context.Context, req *api.CancelOrderRequest) (*api.CancelOrderResponse, error) {
	res, err := h.service.CancelOrder(ctx, application.CancelOrderCommand{OrderID: req.OrderID, Reason: req.Reason})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.CancelOrderResponse{Success: res.Success, Message: res.Message}, nil
}

// ListOrders 的 page_token 是上一页返回的偏移量，空串表示第一页
func (h *OrderGRPCHandler) ListOrders(ctx context.Context, req *api.ListOrdersRequest) (*api.ListOrdersResponse, error) {
	offset := 0
	if req.PageToken != "" {
		n, err := strconv.Atoi(req.PageToken)
		if err != nil || n < 0 {
			return nil, status.Errorf(codes.InvalidArgument, "invalid page_token %q", req.PageToken)
		}
		offset = n
	}
	res, err := h.service.ListOrders(ctx, application.ListOrdersQuery{
		CustomerID: req.CustomerID,
		PageSize:   int(req.PageSize),
		Offset:     offset,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}

	resp := &api.ListOrdersResponse{
		Orders:     make([]*api.Order, 0, len(res.Orders)),
		TotalCount: int32(res.TotalCount),
	}
	for _, order := range res.Orders {
		resp.Orders = append(resp.Orders, toAPIOrder(order))
	}
	if res.NextOffset >= 0 {
		resp.NextPageToken = strconv.Itoa(res.NextOffset)
	}
	return resp, nil
}

// TraceIDTrailer 是内部错误响应中携带 trace id 的 trailer 键
const TraceIDTrailer = "trace-id"

// internalError 记录错误并返回 Internal；调用方可凭 trailer 中的 trace id 定位日志
func internalError(ctx context.Context, err error) error {
	traceID := tracing.GetTraceIDFromContext(ctx)
	logger.Ctx(ctx).Error().Err(err).Msg("internal error while handling request")
	if traceID != "" {
		// 非 gRPC 调用（如 HTTP 调试入口）没有 stream，设置失败可以忽略
		_ = grpc.SetTrailer(ctx, metadata.Pairs(TraceIDTrailer, traceID))
	}
	return status.Errorf(codes.Internal, "Internal error: %v", err)
}

func toAPIOrder(order *domain.Order) *api.Order {
	if order == nil {
		return nil
	}
	items := make([]*api.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &api.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return &api.Order{
		OrderID:         order.OrderID,
		CustomerID:      order.CustomerID,
		CustomerEmail:   order.CustomerEmail,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status.String(),
		CreatedAt:       order.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339Nano),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
	}
}
