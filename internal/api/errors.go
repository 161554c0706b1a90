package api

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain identifies omnivault errors in errdetails.ErrorInfo.
const ErrorDomain = "omnivault"

var kindCodes = map[common.Kind]codes.Code{
	common.KindValidation:             codes.InvalidArgument,
	common.KindAuthorization:          codes.PermissionDenied,
	common.KindAlreadyClaimed:         codes.FailedPrecondition,
	common.KindConcurrentModification: codes.Aborted,
	common.KindNotFound:               codes.NotFound,
	common.KindConflict:               codes.AlreadyExists,
	common.KindNotClaimable:           codes.FailedPrecondition,
	common.KindUpstream:               codes.Unavailable,
	common.KindUnauthenticated:        codes.Unauthenticated,
	common.KindInternal:               codes.Internal,
}

// ToStatus converts a service error into a gRPC status error. Structured
// errors keep their kind and metadata in an ErrorInfo detail; anything else
// is reported as an opaque internal error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	var e *common.Error
	if !errors.As(err, &e) || e.Kind == common.KindInternal {
		return status.Error(codes.Internal, "internal error")
	}

	code, ok := kindCodes[e.Kind]
	if !ok {
		code = codes.Unknown
	}
	st := status.New(code, e.Message)
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Kind),
		Domain:   ErrorDomain,
		Metadata: e.Metadata,
	})
	if derr != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// FromStatus restores the structured error carried by a gRPC status.
// Errors that are not statuses are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return &common.Error{
				Kind:     common.Kind(info.GetReason()),
				Message:  st.Message(),
				Metadata: info.GetMetadata(),
			}
		}
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return common.Wrap(common.KindUnauthenticated, st.Message(), err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.Wrap(common.KindUpstream, "server unavailable", err)
	case codes.NotFound:
		return common.Wrap(common.KindNotFound, st.Message(), err)
	}
	return common.Wrap(common.KindInternal, st.Message(), err)
}
