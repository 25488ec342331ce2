package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GrpcMetrics covers the health and reflection server.
type GrpcMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	failures metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func NewGrpcMetrics(meter metric.Meter) (*GrpcMetrics, error) {
	gm := &GrpcMetrics{}

	var err error
	if gm.duration, err = meter.Float64Histogram("employee_service.rpc.duration",
		metric.WithDescription("Duration of unary gRPC calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if gm.requests, err = meter.Int64Counter("employee_service.rpc.requests",
		metric.WithDescription("Unary gRPC calls handled"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if gm.failures, err = meter.Int64Counter("employee_service.rpc.failures",
		metric.WithDescription("Unary gRPC calls that ended with a non-OK status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if gm.inFlight, err = meter.Int64UpDownCounter("employee_service.rpc.in_flight",
		metric.WithDescription("Unary gRPC calls currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	return gm, nil
}

func rpcAttributes(fullMethod string) []attribute.KeyValue {
	service, method := splitMethodName(fullMethod)
	return []attribute.KeyValue{
		attribute.String("rpc.system", "grpc"),
		attribute.String("rpc.service", service),
		attribute.String("rpc.method", method),
	}
}

func (gm *GrpcMetrics) RecordRequest(ctx context.Context, fullMethod string, duration time.Duration, code codes.Code) {
	if gm == nil || gm.duration == nil {
		return
	}

	attrs := metric.WithAttributes(append(rpcAttributes(fullMethod),
		attribute.String("rpc.grpc.status_code", code.String()))...)

	gm.duration.Record(ctx, duration.Seconds(), attrs)
	gm.requests.Add(ctx, 1, attrs)
	if code != codes.OK {
		gm.failures.Add(ctx, 1, attrs)
	}
}

// UnaryServerInterceptor records duration, volume, failures and in-flight calls.
func (gm *GrpcMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if gm == nil || gm.inFlight == nil {
			return handler(ctx, req)
		}

		inFlight := metric.WithAttributes(rpcAttributes(info.FullMethod)...)
		gm.inFlight.Add(ctx, 1, inFlight)
		defer gm.inFlight.Add(ctx, -1, inFlight)

		start := time.Now()
		resp, err := handler(ctx, req)
		gm.RecordRequest(ctx, info.FullMethod, time.Since(start), status.Code(err))

		return resp, err
	}
}

// splitMethodName splits "/package.Service/Method" into service and method
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "unknown", fullMethod
}
