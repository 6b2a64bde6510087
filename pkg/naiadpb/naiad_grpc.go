package naiadpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Naiad_Submit_FullMethodName    = "/fort.naiad.Naiad/Submit"
	Naiad_Interrupt_FullMethodName = "/fort.naiad.Naiad/Interrupt"
	Naiad_ResumeAll_FullMethodName = "/fort.naiad.Naiad/ResumeAll"
	Naiad_GetStatus_FullMethodName = "/fort.naiad.Naiad/GetStatus"
)

type NaiadClient interface {
	Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*SubmitReply, error)
	Interrupt(ctx context.Context, in *InterruptRequest, opts ...grpc.CallOption) (*Empty, error)
	ResumeAll(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	GetStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Status, error)
}

type naiadClient struct {
	cc grpc.ClientConnInterface
}

func NewNaiadClient(cc grpc.ClientConnInterface) NaiadClient {
	return &naiadClient{cc}
}

func (c *naiadClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *naiadClient) Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*SubmitReply, error) {
	out := new(SubmitReply)
	if err := c.invoke(ctx, Naiad_Submit_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *naiadClient) Interrupt(ctx context.Context, in *InterruptRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, Naiad_Interrupt_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *naiadClient) ResumeAll(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, Naiad_ResumeAll_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *naiadClient) GetStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Status, error) {
	out := new(Status)
	if err := c.invoke(ctx, Naiad_GetStatus_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// NaiadServer is the server API for the Naiad service. Implementations
// must embed UnimplementedNaiadServer.
type NaiadServer interface {
	Submit(context.Context, *SubmitRequest) (*SubmitReply, error)
	Interrupt(context.Context, *InterruptRequest) (*Empty, error)
	ResumeAll(context.Context, *Empty) (*Empty, error)
	GetStatus(context.Context, *Empty) (*Status, error)
	mustEmbedUnimplementedNaiadServer()
}

type UnimplementedNaiadServer struct{}

func (UnimplementedNaiadServer) Submit(context.Context, *SubmitRequest) (*SubmitReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Submit not implemented")
}

func (UnimplementedNaiadServer) Interrupt(context.Context, *InterruptRequest) (*Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Interrupt not implemented")
}

func (UnimplementedNaiadServer) ResumeAll(context.Context, *Empty) (*Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ResumeAll not implemented")
}

func (UnimplementedNaiadServer) GetStatus(context.Context, *Empty) (*Status, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}

func (UnimplementedNaiadServer) mustEmbedUnimplementedNaiadServer() {}

func RegisterNaiadServer(s grpc.ServiceRegistrar, srv NaiadServer) {
	s.RegisterService(&Naiad_ServiceDesc, srv)
}

type methodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

func unaryHandler[Req any](method string, call func(NaiadServer, context.Context, *Req) (interface{}, error)) methodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NaiadServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(NaiadServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Naiad_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fort.naiad.Naiad",
	HandlerType: (*NaiadServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Submit",
			Handler: unaryHandler(Naiad_Submit_FullMethodName, func(s NaiadServer, ctx context.Context, in *SubmitRequest) (interface{}, error) {
				return s.Submit(ctx, in)
			}),
		},
		{
			MethodName: "Interrupt",
			Handler: unaryHandler(Naiad_Interrupt_FullMethodName, func(s NaiadServer, ctx context.Context, in *InterruptRequest) (interface{}, error) {
				return s.Interrupt(ctx, in)
			}),
		},
		{
			MethodName: "ResumeAll",
			Handler: unaryHandler(Naiad_ResumeAll_FullMethodName, func(s NaiadServer, ctx context.Context, in *Empty) (interface{}, error) {
				return s.ResumeAll(ctx, in)
			}),
		},
		{
			MethodName: "GetStatus",
			Handler: unaryHandler(Naiad_GetStatus_FullMethodName, func(s NaiadServer, ctx context.Context, in *Empty) (interface{}, error) {
				return s.GetStatus(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "naiad.proto",
}
