package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "cleaning.v1.SchedulingService"

// SchedulingServer is the server API of cleaning.v1.SchedulingService. Every
// method takes and returns a google.protobuf.Struct.
type SchedulingServer interface {
	DailyAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SlotAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	UpdateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(SchedulingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SchedulingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SchedulingServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DailyAvailability", Handler: unaryHandler("DailyAvailability", SchedulingServer.DailyAvailability)},
		{MethodName: "SlotAvailability", Handler: unaryHandler("SlotAvailability", SchedulingServer.SlotAvailability)},
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", SchedulingServer.CreateBooking)},
		{MethodName: "UpdateBooking", Handler: unaryHandler("UpdateBooking", SchedulingServer.UpdateBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", SchedulingServer.GetBooking)},
		{MethodName: "DeleteBooking", Handler: unaryHandler("DeleteBooking", SchedulingServer.DeleteBooking)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cleaning/v1/scheduling.proto",
}

func RegisterSchedulingServer(s grpc.ServiceRegistrar, srv SchedulingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls cleaning.v1.SchedulingService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DailyAvailability(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DailyAvailability", in, opts...)
}

func (c *Client) SlotAvailability(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SlotAvailability", in, opts...)
}

func (c *Client) CreateBooking(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateBooking", in, opts...)
}

func (c *Client) UpdateBooking(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateBooking", in, opts...)
}

func (c *Client) GetBooking(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetBooking", in, opts...)
}

func (c *Client) DeleteBooking(ctx context.Context, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteBooking", in, opts...)
}
