package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/prn-tf/inkwell/internal/token"
	"github.com/prn-tf/inkwell/internal/transport"
)

// authenticate extracts and verifies the bearer token from the
// "authorization" metadata entry.
func authenticate(ctx context.Context, tokens *token.Service) (*token.Claims, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid token")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid token")
	}

	raw, err := transport.ParseBearer(values[0])
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid token")
	}

	claims, err := tokens.Verify(raw)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid token")
	}
	return claims, nil
}
