// internal/service/inventory/interfaces/grpc_handler.go
package interfaces

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"eventshop/internal/pkg/logger"
	"eventshop/internal/pkg/tracing"
	"eventshop/internal/service/inventory/api"
	"eventshop/internal/service/inventory/application"
	"eventshop/internal/service/inventory/domain"
)

// InventoryGRPCHandler 把 gRPC 请求转换为应用层调用。
// 业务失败通过响应中的 success/message 表达，只有内部错误才返回 Internal 状态码。
type InventoryGRPCHandler struct {
	service *application.InventoryApplicationService
}

func NewInventoryGRPCHandler(service *application.InventoryApplicationService) *InventoryGRPCHandler {
	return &InventoryGRPCHandler{service: service}
}

var _ api.InventoryServiceServer = (*InventoryGRPCHandler)(nil)

func (h *InventoryGRPCHandler) CheckAvailability(ctx context.Context, req *api.CheckAvailabilityRequest) (*api.CheckAvailabilityResponse, error) {
	res, err := h.service.CheckAvailability(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.CheckAvailabilityResponse{
		Available:         res.Available,
		AvailableQuantity: res.AvailableQuantity,
		Message:           res.Message,
	}, nil
}

func (h *InventoryGRPCHandler) ReserveInventory(ctx context.Context, req *api.ReserveInventoryRequest) (*api.ReserveInventoryResponse, error) {
	res, err := h.service.ReserveInventory(ctx, application.ReserveCommand{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.ReserveInventoryResponse{
		Success:       res.Success,
		ReservationID: res.ReservationID,
		Message:       res.Message,
	}, nil
}

func (h *InventoryGRPCHandler) ReleaseInventory(ctx context.Context, req *api.ReleaseInventoryRequest) (*api.ReleaseInventoryResponse, error) {
	res, err := h.service.ReleaseInventory(ctx, application.ReleaseCommand{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		OrderID:       req.OrderID,
		ReservationID: req.ReservationID,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.ReleaseInventoryResponse{Success: res.Success, Message: res.Message}, nil
}

func (h *InventoryGRPCHandler) UpdateInventory(ctx context.Context, req *api.UpdateInventoryRequest) (*api.UpdateInventoryResponse, error) {
	res, err := h.service.UpdateInventory(ctx, application.UpdateCommand{
		ProductID:      req.ProductID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
	})
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.UpdateInventoryResponse{
		Success:   res.Success,
		Inventory: toAPIInventory(res.Inventory),
		Message:   res.Message,
	}, nil
}

func (h *InventoryGRPCHandler) GetInventory(ctx context.Context, req *api.GetInventoryRequest) (*api.GetInventoryResponse, error) {
	res, err := h.service.GetInventory(ctx, req.ProductID)
	if err != nil {
		return nil, internalError(ctx, err)
	}
	return &api.GetInventoryResponse{
		Success:   res.Success,
		Inventory: toAPIInventory(res.Inventory),
		Message:   res.Message,
	}, nil
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

func toAPIInventory(inv *domain.ProductInventory) *api.ProductInventory {
	if inv == nil {
		return nil
	}
	var lastUpdated string
	if !inv.LastUpdated.IsZero() {
		lastUpdated = inv.LastUpdated.Format(time.RFC3339Nano)
	}
	return &api.ProductInventory{
		ProductID:         inv.ProductID,
		ProductName:       inv.ProductName,
		AvailableQuantity: inv.AvailableQuantity,
		ReservedQuantity:  inv.ReservedQuantity,
		TotalQuantity:     inv.TotalQuantity,
		UnitPrice:         inv.UnitPrice,
		LastUpdated:       lastUpdated,
	}
}
