package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// StrataServer is the server API for the Strata gRPC service.
//
// Payloads are JSON envelopes carried in protobuf well-known wrapper types
// so this package does not require a protoc/codegen toolchain.
//
// Proto definition: strata.proto.
type StrataServer interface {
	Login(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Logout(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Call(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedStrataServer can be embedded to have forward compatible
// implementations.
type UnimplementedStrataServer struct{}

func (UnimplementedStrataServer) Login(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedStrataServer) Logout(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedStrataServer) Call(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Call not implemented")
}

// RegisterStrataServer registers the Strata service on a gRPC server.
func RegisterStrataServer(s grpc.ServiceRegistrar, srv StrataServer) {
	s.RegisterService(&Strata_ServiceDesc, srv)
}

// StrataClient is the client API for the Strata gRPC service.
type StrataClient interface {
	Login(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Logout(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Call(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type strataClient struct{ cc grpc.ClientConnInterface }

func NewStrataClient(cc grpc.ClientConnInterface) StrataClient { return &strataClient{cc: cc} }

func (c *strataClient) Login(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/mesh.strata.rpc.v1.Strata/Login", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *strataClient) Logout(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/mesh.strata.rpc.v1.Strata/Logout", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *strataClient) Call(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/mesh.strata.rpc.v1.Strata/Call", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Strata_Login_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StrataServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mesh.strata.rpc.v1.Strata/Login"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StrataServer).Login(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Strata_Logout_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StrataServer).Logout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mesh.strata.rpc.v1.Strata/Logout"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StrataServer).Logout(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Strata_Call_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StrataServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mesh.strata.rpc.v1.Strata/Call"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StrataServer).Call(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Strata_ServiceDesc is the grpc.ServiceDesc for the Strata service.
var Strata_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mesh.strata.rpc.v1.Strata",
	HandlerType: (*StrataServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: _Strata_Login_Handler},
		{MethodName: "Logout", Handler: _Strata_Logout_Handler},
		{MethodName: "Call", Handler: _Strata_Call_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "strata.proto",
}
