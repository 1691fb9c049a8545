// internal/service/inventory/api/service.go
package api

import (
	"context"

	"google.golang.org/grpc"

	"eventshop/internal/pkg/rpc"
)

const ServiceName = "inventory.InventoryService"

const (
	checkAvailabilityMethod = "/" + ServiceName + "/CheckAvailability"
	reserveInventoryMethod  = "/" + ServiceName + "/ReserveInventory"
	releaseInventoryMethod  = "/" + ServiceName + "/ReleaseInventory"
	updateInventoryMethod   = "/" + ServiceName + "/UpdateInventory"
	getInventoryMethod      = "/" + ServiceName + "/GetInventory"
)

// InventoryServiceServer 是服务端需要实现的接口
type InventoryServiceServer interface {
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	ReserveInventory(context.Context, *ReserveInventoryRequest) (*ReserveInventoryResponse, error)
	ReleaseInventory(context.Context, *ReleaseInventoryRequest) (*ReleaseInventoryResponse, error)
	UpdateInventory(context.Context, *UpdateInventoryRequest) (*UpdateInventoryResponse, error)
	GetInventory(context.Context, *GetInventoryRequest) (*GetInventoryResponse, error)
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckAvailability", Handler: rpc.UnaryHandler(checkAvailabilityMethod, InventoryServiceServer.CheckAvailability)},
		{MethodName: "ReserveInventory", Handler: rpc.UnaryHandler(reserveInventoryMethod, InventoryServiceServer.ReserveInventory)},
		{MethodName: "ReleaseInventory", Handler: rpc.UnaryHandler(releaseInventoryMethod, InventoryServiceServer.ReleaseInventory)},
		{MethodName: "UpdateInventory", Handler: rpc.UnaryHandler(updateInventoryMethod, InventoryServiceServer.UpdateInventory)},
		{MethodName: "GetInventory", Handler: rpc.UnaryHandler(getInventoryMethod, InventoryServiceServer.GetInventory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory.proto",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

// InventoryServiceClient 是调用方使用的客户端
type InventoryServiceClient interface {
	CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error)
	ReserveInventory(ctx context.Context, in *ReserveInventoryRequest, opts ...grpc.CallOption) (*ReserveInventoryResponse, error)
	ReleaseInventory(ctx context.Context, in *ReleaseInventoryRequest, opts ...grpc.CallOption) (*ReleaseInventoryResponse, error)
	UpdateInventory(ctx context.Context, in *UpdateInventoryRequest, opts ...grpc.CallOption) (*UpdateInventoryResponse, error)
	GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func (c *inventoryServiceClient) CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error) {
	return rpc.Invoke[CheckAvailabilityResponse](ctx, c.cc, checkAvailabilityMethod, in, opts...)
}

func (c *inventoryServiceClient) ReserveInventory(ctx context.Context, in *ReserveInventoryRequest, opts ...grpc.CallOption) (*ReserveInventoryResponse, error) {
	return rpc.Invoke[ReserveInventoryResponse](ctx, c.cc, reserveInventoryMethod, in, opts...)
}

func (c *inventoryServiceClient) ReleaseInventory(ctx context.Context, in *ReleaseInventoryRequest, opts ...grpc.CallOption) (*ReleaseInventoryResponse, error) {
	return rpc.Invoke[ReleaseInventoryResponse](ctx, c.cc, releaseInventoryMethod, in, opts...)
}

func (c *inventoryServiceClient) UpdateInventory(ctx context.Context, in *UpdateInventoryRequest, opts ...grpc.CallOption) (*UpdateInventoryResponse, error) {
	return rpc.Invoke[UpdateInventoryResponse](ctx, c.cc, updateInventoryMethod, in, opts...)
}

func (c *inventoryServiceClient) GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error) {
	return rpc.Invoke[GetInventoryResponse](ctx, c.cc, getInventoryMethod, in, opts...)
}
