package grpcapi

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer wires the scheduling service, the standard health service and
// reflection into one server.
func NewGRPCServer(srv SchedulingServer, logger *zap.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLogger(logger.Named("grpc"))))
	RegisterSchedulingServer(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	reflection.Register(s)
	return s, hs
}
