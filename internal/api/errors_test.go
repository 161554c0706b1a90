package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus_Codes(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.Validation("no assets"), codes.InvalidArgument},
		{common.NewError(common.KindAuthorization, "not yours"), codes.PermissionDenied},
		{common.NewError(common.KindAlreadyClaimed, "claimed"), codes.FailedPrecondition},
		{common.NewError(common.KindNotClaimable, "not yet"), codes.FailedPrecondition},
		{common.NewError(common.KindConcurrentModification, "raced"), codes.Aborted},
		{common.NotFound("vault"), codes.NotFound},
		{common.NewError(common.KindConflict, "taken"), codes.AlreadyExists},
		{common.NewError(common.KindUpstream, "bridge down"), codes.Unavailable},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{fmt.Errorf("wrapped: %w", common.NotFound("token")), codes.NotFound},
		{errors.New("db error: connection reset"), codes.Internal},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(ToStatus(tt.err)))
		})
	}
}

func TestToStatus_HidesInternalDetails(t *testing.T) {
	err := ToStatus(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", status.Convert(err).Message())
}

func TestToStatus_PassesStatusThrough(t *testing.T) {
	in := status.Error(codes.Unauthenticated, "missing token")
	assert.Equal(t, in, ToStatus(in))
	assert.Nil(t, ToStatus(nil))
}

func TestStatusRoundTrip(t *testing.T) {
	orig := common.NewError(common.KindNotClaimable, "vault not claimable yet",
		common.MetaVaultID, "v1", common.MetaDaysRemaining, "12")

	got := FromStatus(ToStatus(orig))

	require.True(t, errors.Is(got, common.ErrorNotClaimable))
	var e *common.Error
	require.True(t, errors.As(got, &e))
	assert.Equal(t, "vault not claimable yet", e.Message)
	assert.Equal(t, map[string]string{common.MetaVaultID: "v1", common.MetaDaysRemaining: "12"}, e.Metadata)
}

func TestStatusRoundTrip_TokenExpired(t *testing.T) {
	got := FromStatus(ToStatus(common.ErrTokenExpired))
	assert.True(t, errors.Is(got, common.ErrTokenExpired))
	assert.False(t, errors.Is(got, common.ErrInvalidToken))
}

func TestFromStatus_PlainStatus(t *testing.T) {
	assert.Equal(t, common.KindUpstream, common.KindOf(FromStatus(status.Error(codes.Unavailable, "connection refused"))))
	assert.Equal(t, common.KindUnauthenticated, common.KindOf(FromStatus(status.Error(codes.Unauthenticated, "missing token"))))
	assert.Equal(t, common.KindInternal, common.KindOf(FromStatus(status.Error(codes.Unknown, "?"))))

	plain := errors.New("dial failed")
	assert.Equal(t, plain, FromStatus(plain))
	assert.Nil(t, FromStatus(nil))
}
