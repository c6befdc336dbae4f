package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hkustjob.v1.Dashboard"

// DashboardServer is the server API of hkustjob.v1.Dashboard. Messages are
// protobuf well-known types so no generated code is needed.
type DashboardServer interface {
	ParsePages(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	StartScrape(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Progress(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Health(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes hkustjob.v1.Dashboard for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ParsePages", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, DashboardServer.ParsePages),
		unary("StartScrape", func() *structpb.Struct { return new(structpb.Struct) }, DashboardServer.StartScrape),
		unary("ListJobs", func() *structpb.Struct { return new(structpb.Struct) }, DashboardServer.ListJobs),
		unary("Progress", func() *emptypb.Empty { return new(emptypb.Empty) }, DashboardServer.Progress),
		unary("Health", func() *emptypb.Empty { return new(emptypb.Empty) }, DashboardServer.Health),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req proto.Message](
	name string,
	newReq func() Req,
	call func(DashboardServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DashboardServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ─── Client ──────────────────────────────────────────────────────────────────

// DashboardClient calls hkustjob.v1.Dashboard over a client connection.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) ParsePages(ctx context.Context, input string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ParsePages"), wrapperspb.String(input), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) StartScrape(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("StartScrape"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) ListJobs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListJobs"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) Progress(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Progress"), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) Health(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Health"), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
