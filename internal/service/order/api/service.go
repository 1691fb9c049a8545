// internal/service/order/api/service.go
package api

import (
	"context"

	"google.golang.org/grpc"

	"eventshop/internal/pkg/rpc"
)

const ServiceName = "order.OrderService"

const (
	createOrderMethod = "/" + ServiceName + "/CreateOrder"
	getOrderMethod    = "/" + ServiceName + "/GetOrder"
	updateOrderMethod = "/" + ServiceName + "/UpdateOrder"
	cancelOrderMethod = "/" + ServiceName + "/CancelOrder"
	listOrdersMethod  = "/" + ServiceName + "/ListOrders"
)

type OrderServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	UpdateOrder(context.Context, *UpdateOrderRequest) (*UpdateOrderResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: rpc.UnaryHandler(createOrderMethod, OrderServiceServer.CreateOrder)},
		{MethodName: "GetOrder", Handler: rpc.UnaryHandler(getOrderMethod, OrderServiceServer.GetOrder)},
		{MethodName: "UpdateOrder", Handler: rpc.UnaryHandler(updateOrderMethod, OrderServiceServer.UpdateOrder)},
		{MethodName: "CancelOrder", Handler: rpc.UnaryHandler(cancelOrderMethod, OrderServiceServer.CancelOrder)},
		{MethodName: "ListOrders", Handler: rpc.UnaryHandler(listOrdersMethod, OrderServiceServer.ListOrders)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "order.proto",
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}

type OrderServiceClient interface {
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
	UpdateOrder(ctx context.Context, in *UpdateOrderRequest, opts ...grpc.CallOption) (*UpdateOrderResponse, error)
	CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CancelOrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	return rpc.Invoke[CreateOrderResponse](ctx, c.cc, createOrderMethod, in, opts...)
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	return rpc.Invoke[GetOrderResponse](ctx, c.cc, getOrderMethod, in, opts...)
}

func (c *orderServiceClient) UpdateOrder(ctx context.Context, in *UpdateOrderRequest, opts ...grpc.CallOption) (*UpdateOrderResponse, error) {
	return rpc.Invoke[UpdateOrderResponse](ctx, c.cc, updateOrderMethod, in, opts...)
}

func (c *orderServiceClient) CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CancelOrderResponse, error) {
	return rpc.Invoke[CancelOrderResponse](ctx, c.cc, cancelOrderMethod, in, opts...)
}

func (c *orderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return rpc.Invoke[ListOrdersResponse](ctx, c.cc, listOrdersMethod, in, opts...)
}
