package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/howdoihelp/howdoihelp/internal/policy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Handler implements PolicyServiceServer.
type Handler struct {
	checker *policy.Checker
}

// NewHandler creates a new gRPC handler backed by checker.
func NewHandler(checker *policy.Checker) *Handler {
	return &Handler{checker: checker}
}

// Check classifies the "ip" field of the request against the content policy.
func (h *Handler) Check(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	ipValue, ok := req.GetFields()["ip"]
	if !ok || ipValue.GetStringValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "ip is required")
	}

	g, err := h.checker.Check(ipValue.GetStringValue())
	switch {
	case errors.Is(err, policy.ErrInvalidIP):
		return nil, status.Error(codes.InvalidArgument, "invalid IP address")
	case errors.Is(err, policy.ErrUnavailable):
		return nil, status.Error(codes.Unavailable, "policy database not configured")
	case err != nil:
		return nil, status.Error(codes.Internal, "lookup failed")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"country":          g.Country(),
		"country_code":     g.CountryCode(),
		"is_authoritarian": g.IsAuthoritarian(),
		"show_advocacy":    !g.IsAuthoritarian(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return resp, nil
}

// LoggingInterceptor logs every unary call with its status code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch status.Code(err) {
		case codes.OK:
			logger.Info("rpc completed", attrs...)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			logger.Error("rpc completed", append(attrs, "error", err)...)
		default:
			logger.Warn("rpc completed", attrs...)
		}
		return resp, err
	}
}
