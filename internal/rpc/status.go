// Package rpc provides the gRPC transport for Inkwell.
package rpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/prn-tf/inkwell/internal/domain"
)

// toStatus converts a service error into a gRPC status. Unclassified
// errors become codes.Internal with a generic message so internals never
// leak to clients.
func toStatus(err error) error {
	var ve *domain.ValidationError
	var ae *domain.AlreadyExistsError
	var nf *domain.NotFoundError

	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.As(err, &ae):
		return status.Error(codes.AlreadyExists, ae.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.As(err, &nf):
		return status.Error(codes.NotFound, nf.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
