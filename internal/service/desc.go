package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "autonomy.v1.AutonomyService"

// Full method names, as used by clients and interceptors.
const (
	CalculateFullMethod     = "/" + ServiceName + "/Calculate"
	GetEfficiencyFullMethod = "/" + ServiceName + "/GetEfficiency"
)

// ServiceDesc describes autonomy.v1.AutonomyService for grpc.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AutonomyServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Calculate",
			Handler:    calculateHandler,
		},
		{
			MethodName: "GetEfficiency",
			Handler:    getEfficiencyHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "autonomy/v1/autonomy.proto",
}

// Register registers srv on s.
func Register(s grpc.ServiceRegistrar, srv AutonomyServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// NewGRPCServer returns a gRPC server with the autonomy service and the
// standard health service registered. The health server is returned so the
// caller can flip it to NOT_SERVING on shutdown.
func NewGRPCServer(srv AutonomyServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(opts...)
	Register(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return s, hs
}

func calculateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AutonomyServer).Calculate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CalculateFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AutonomyServer).Calculate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getEfficiencyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AutonomyServer).GetEfficiency(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetEfficiencyFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AutonomyServer).GetEfficiency(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
