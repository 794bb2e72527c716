package rpc

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// mapRPC converts a gRPC call failure into the driver's error taxonomy.
// Connection-level codes become ErrTransportFailure; semantic codes map to
// their sentinels with the server's message preserved.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", types.ErrTransportFailure, err)
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", types.ErrAuthenticationFailure, st.Message())
	case codes.Aborted:
		return fmt.Errorf("%w: %s", types.ErrTransactionConflict, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", types.ErrIllegalStateTransition, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", types.ErrMissingRequiredArguments, st.Message())
	case codes.Unimplemented:
		return fmt.Errorf("%w: %s", types.ErrUnsupportedShape, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", types.ErrTransportFailure, st.Message())
	default:
		return err
	}
}

// mapErr converts an engine error into a gRPC status for the server side.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, types.ErrAuthenticationFailure),
		errors.Is(err, store.ErrUnknownCredential):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, types.ErrTransactionConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, store.ErrNestedTransaction),
		errors.Is(err, store.ErrUnknownTransaction):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
