package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ServiceTokenHeader carries the shared secret between internal services.
const ServiceTokenHeader = "x-service-token"

// NewServiceAuthUnaryInterceptor rejects calls whose service token does not
// match expected.
func NewServiceAuthUnaryInterceptor(expected string) (grpc.UnaryServerInterceptor, error) {
	if expected == "" {
		return nil, errors.New("service auth token required")
	}
	want := []byte(expected)
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if err := checkServiceToken(ctx, want); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}, nil
}

// NewLoggingUnaryInterceptor logs every call with its status code.
func NewLoggingUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelInfo
		if code := status.Code(err); code == codes.Internal || code == codes.Unavailable {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "grpc",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// WithServiceToken attaches the service token to outgoing calls.
func WithServiceToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, ServiceTokenHeader, token)
}

func checkServiceToken(ctx context.Context, want []byte) error {
	md, _ := metadata.FromIncomingContext(ctx)
	var got string
	if values := md.Get(ServiceTokenHeader); len(values) > 0 {
		got = strings.TrimSpace(values[0])
	}
	if got == "" {
		return status.Error(codes.Unauthenticated, "missing_service_token")
	}
	if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
		return status.Error(codes.PermissionDenied, "invalid_service_token")
	}
	return nil
}
