package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	FlashSale_ExposeItem_FullMethodName = "/flashsale.FlashSale/ExposeItem"
	FlashSale_Purchase_FullMethodName   = "/flashsale.FlashSale/Purchase"
	FlashSale_GetItem_FullMethodName    = "/flashsale.FlashSale/GetItem"
)

type FlashSaleClient interface {
	ExposeItem(ctx context.Context, in *ExposeRequest, opts ...grpc.CallOption) (*ExposeResponse, error)
	Purchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error)
	GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*Item, error)
}

type flashSaleClient struct {
	cc grpc.ClientConnInterface
}

func NewFlashSaleClient(cc grpc.ClientConnInterface) FlashSaleClient {
	return &flashSaleClient{cc}
}

func (c *flashSaleClient) ExposeItem(ctx context.Context, in *ExposeRequest, opts ...grpc.CallOption) (*ExposeResponse, error) {
	out := new(ExposeResponse)
	if err := c.cc.Invoke(ctx, FlashSale_ExposeItem_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *flashSaleClient) Purchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*PurchaseResponse, error) {
	out := new(PurchaseResponse)
	if err := c.cc.Invoke(ctx, FlashSale_Purchase_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *flashSaleClient) GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*Item, error) {
	out := new(Item)
	if err := c.cc.Invoke(ctx, FlashSale_GetItem_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

type FlashSaleServer interface {
	ExposeItem(context.Context, *ExposeRequest) (*ExposeResponse, error)
	Purchase(context.Context, *PurchaseRequest) (*PurchaseResponse, error)
	GetItem(context.Context, *GetItemRequest) (*Item, error)
	mustEmbedUnimplementedFlashSaleServer()
}

// UnimplementedFlashSaleServer must be embedded by server implementations.
type UnimplementedFlashSaleServer struct{}

func (UnimplementedFlashSaleServer) ExposeItem(context.Context, *ExposeRequest) (*ExposeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ExposeItem not implemented")
}

func (UnimplementedFlashSaleServer) Purchase(context.Context, *PurchaseRequest) (*PurchaseResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Purchase not implemented")
}

func (UnimplementedFlashSaleServer) GetItem(context.Context, *GetItemRequest) (*Item, error) {
	return nil, status.Error(codes.Unimplemented, "method GetItem not implemented")
}

func (UnimplementedFlashSaleServer) mustEmbedUnimplementedFlashSaleServer() {}

func RegisterFlashSaleServer(s grpc.ServiceRegistrar, srv FlashSaleServer) {
	s.RegisterService(&FlashSale_ServiceDesc, srv)
}

func exposeItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExposeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlashSaleServer).ExposeItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FlashSale_ExposeItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlashSaleServer).ExposeItem(ctx, req.(*ExposeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func purchaseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PurchaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlashSaleServer).Purchase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FlashSale_Purchase_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlashSaleServer).Purchase(ctx, req.(*PurchaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlashSaleServer).GetItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FlashSale_GetItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlashSaleServer).GetItem(ctx, req.(*GetItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var FlashSale_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "flashsale.FlashSale",
	HandlerType: (*FlashSaleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExposeItem", Handler: exposeItemHandler},
		{MethodName: "Purchase", Handler: purchaseHandler},
		{MethodName: "GetItem", Handler: getItemHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flashsale.proto",
}
