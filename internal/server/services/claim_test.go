package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/claims"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omnivault/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimableVault(t *testing.T, e *env) *models.Vault {
	t.Helper()
	u := e.user(t, "owner", "owner-wallet")
	sol := e.token(t, u.ID, "mint-sol", "SOL", "1000")
	v := e.activeVault(t, u, sol, "100", 30)
	e.clock.Advance(45 * timex.Day)
	return v
}

func TestClaimVault_PerBeneficiaryFinality(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	res, err := e.claims.ClaimVault(ctx, v.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimCompleted, res.Claim.Status)
	require.Len(t, res.Claim.Payouts, 1)
	assert.Equal(t, "60", res.Claim.Payouts[0].Amount.String())
	require.Len(t, res.Claim.Receipts, 1)
	assert.Equal(t, "hash-alice-60", res.Claim.Receipts[0].TxHash)
	assert.NotEmpty(t, res.ArchiveKey)

	stored, err := e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultTriggered, stored.Status, "bob has not claimed yet")

	_, err = e.claims.ClaimVault(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorAlreadyClaimed))

	res, err = e.claims.ClaimVault(ctx, v.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "40", res.Claim.Payouts[0].Amount.String())

	stored, err = e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultClaimed, stored.Status)

	require.Len(t, e.signer.calls, 2)
	assert.Equal(t, "owner-wallet", e.signer.calls[0].From)
	assert.Equal(t, "mint-sol", e.signer.calls[0].Mint)
	assert.Len(t, e.archive.stored, 2)
}

func TestClaimVault_ClaimedVaultRejectsEveryone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	for _, b := range []string{"alice", "bob"} {
		_, err := e.claims.ClaimVault(ctx, v.ID, b)
		require.NoError(t, err)
	}
	for _, b := range []string{"alice", "bob", "mallory"} {
		_, err := e.claims.ClaimVault(ctx, v.ID, b)
		assert.True(t, errors.Is(err, common.ErrorAlreadyClaimed), "%s: %v", b, err)
	}
}

func TestClaimVault_NonBeneficiary(t *testing.T) {
	e := newEnv(t)
	v := claimableVault(t, e)

	_, err := e.claims.ClaimVault(context.Background(), v.ID, "mallory")
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}

func TestClaimVault_NotYetClaimable(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "owner", "owner-wallet")
	sol := e.token(t, u.ID, "mint-sol", "SOL", "1000")
	v := e.activeVault(t, u, sol, "100", 30)
	e.clock.Advance(10 * timex.Day)

	_, err := e.claims.ClaimVault(context.Background(), v.ID, "alice")
	var ce *common.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.KindNotClaimable, ce.Kind)
	assert.Equal(t, "20", ce.Metadata[common.MetaDaysRemaining])
}

func TestClaimVault_SignerFailureReleasesClaim(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	e.signer.fail = true
	_, err := e.claims.ClaimVault(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorUpstream))
	assert.ErrorContains(t, err, "wallet offline")

	_, err = e.rm.Claims().Get(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "pending claim released")

	e.signer.fail = false
	_, err = e.claims.ClaimVault(ctx, v.ID, "alice")
	require.NoError(t, err)
}

func TestClaimVault_ConcurrentClaimsPayOnce(t *testing.T) {
	e := newEnv(t)
	v := claimableVault(t, e)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.claims.ClaimVault(context.Background(), v.ID, "alice")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		kind := common.KindOf(err)
		assert.Contains(t, []common.Kind{common.KindConcurrentModification, common.KindAlreadyClaimed}, kind, "unexpected %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, e.signer.calls, 1, "exactly one payout")
}

func TestClaimVault_UnknownVault(t *testing.T) {
	e := newEnv(t)
	_, err := e.claims.ClaimVault(context.Background(), "missing", "alice")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestReceiptURL(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	_, err := e.claims.ReceiptURL(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	res, err := e.claims.ClaimVault(ctx, v.ID, "alice")
	require.NoError(t, err)

	url, err := e.claims.ReceiptURL(ctx, v.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/"+res.ArchiveKey, url)
}

func TestClaimVault_WithoutArchive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	svc := NewClaimService(e.rm, e.signer, nil, logging.Nop())
	svc.now = e.clock.Now

	res, err := svc.ClaimVault(ctx, v.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveKey)

	_, err = svc.ReceiptURL(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestAllClaimed(t *testing.T) {
	done := func(addr string) *models.Claim {
		return &models.Claim{Beneficiary: addr, Status: models.ClaimCompleted}
	}
	pending := &models.Claim{Beneficiary: "bob", Status: models.ClaimPending}

	assert.True(t, allClaimed([]string{"alice"}, []*models.Claim{done("alice")}))
	assert.False(t, allClaimed([]string{"alice", "bob"}, []*models.Claim{done("alice"), pending}))
	assert.False(t, allClaimed(nil, nil))
}

// flakyClaims fails the first failCompletes claim completions.
type flakyClaims struct {
	*repomanager.MemoryRepositoryManager
	failCompletes int
}

func (m *flakyClaims) Claims() claims.Repository {
	return flakyClaimRepo{Repository: m.MemoryRepositoryManager.Claims(), m: m}
}

type flakyClaimRepo struct {
	claims.Repository
	m *flakyClaims
}

func (r flakyClaimRepo) Complete(ctx context.Context, id string, receipts []models.Receipt, completedAt time.Time) error {
	if r.m.failCompletes > 0 {
		r.m.failCompletes--
		return errors.New("db down")
	}
	return r.Repository.Complete(ctx, id, receipts, completedAt)
}

func TestClaimVault_RetryCompletesSignedClaim(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	m := &flakyClaims{MemoryRepositoryManager: e.rm, failCompletes: 1}
	svc := NewClaimService(m, e.signer, e.archive, logging.Nop())
	svc.now = e.clock.Now

	_, err := svc.ClaimVault(ctx, v.ID, "alice")
	require.ErrorContains(t, err, "db down")

	pending, err := e.rm.Claims().Get(ctx, v.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, pending.Status)
	require.Len(t, pending.Receipts, 1, "receipts of the signed payout are kept")

	res, err := svc.ClaimVault(ctx, v.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimCompleted, res.Claim.Status)
	require.Len(t, res.Claim.Receipts, 1)
	assert.Equal(t, "hash-alice-60", res.Claim.Receipts[0].TxHash)
	assert.Len(t, e.signer.calls, 1, "no second payout")

	_, err = svc.ClaimVault(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorAlreadyClaimed))

	_, err = svc.ClaimVault(ctx, v.ID, "bob")
	require.NoError(t, err)
	stored, err := e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultClaimed, stored.Status)
}

func TestClaimVault_InFlightClaimStaysReserved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := claimableVault(t, e)

	_, err := e.rm.Claims().Create(ctx, &models.Claim{
		ID: "c-1", VaultID: v.ID, Beneficiary: "alice", Status: models.ClaimPending, CreatedAt: e.clock.Now(),
	})
	require.NoError(t, err)

	_, err = e.claims.ClaimVault(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorAlreadyClaimed))
	assert.Empty(t, e.signer.calls)
}

// unsettledVault leaves v triggered with every claimant's claim completed,
// as if the final status write had run out of attempts.
func unsettledVault(t *testing.T, e *env) *models.Vault {
	t.Helper()
	ctx := context.Background()
	v := claimableVault(t, e)

	stored, err := e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	_, err = e.rm.Vaults().UpdateState(ctx, v.ID, stored.Version, models.VaultTriggered, stored.LastActivity)
	require.NoError(t, err)

	for _, b := range []string{"alice", "bob"} {
		c := &models.Claim{ID: "c-" + b, VaultID: v.ID, Beneficiary: b, Status: models.ClaimPending, CreatedAt: e.clock.Now()}
		_, err := e.rm.Claims().Create(ctx, c)
		require.NoError(t, err)
		require.NoError(t, e.rm.Claims().Complete(ctx, c.ID, []models.Receipt{{AssetID: "asset-" + v.ID, TxHash: "h-" + b}}, e.clock.Now()))
	}
	return v
}

func TestClaimVault_RetriesDeferredSettlement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := unsettledVault(t, e)

	_, err := e.claims.ClaimVault(ctx, v.ID, "alice")
	assert.True(t, errors.Is(err, common.ErrorAlreadyClaimed))

	stored, err := e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultClaimed, stored.Status)
}

func TestGetVault_SettlesFullyClaimedVault(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := unsettledVault(t, e)

	got, err := e.vaults.GetVault(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultClaimed, got.Status)

	stored, err := e.rm.Vaults().Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VaultClaimed, stored.Status)
}
