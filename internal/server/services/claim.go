package services

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/archive"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omnivault/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// settleAttempts bounds the retries of the final vault status write.
const settleAttempts = 3

// ClaimResult is a completed claim together with where its receipt was archived.
type ClaimResult struct {
	Claim *models.Claim
	// ArchiveKey is empty when no archive is configured or archiving failed.
	ArchiveKey string
}

// ClaimService pays out a beneficiary's share of a claimable vault.
//
// Claims are tracked per (vault, beneficiary). The vault turns claimed once
// every beneficiary holding a non-zero allocation has a completed claim.
type ClaimService struct {
	repomanager repomanager.RepositoryManager
	signer      chain.TransactionSigner
	archive     archive.Archive
	logger      logging.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewClaimService builds the service. arch may be nil to disable receipt archiving.
func NewClaimService(m repomanager.RepositoryManager, signer chain.TransactionSigner, arch archive.Archive, logger logging.Logger) *ClaimService {
	if arch == nil {
		arch = archive.Nop{}
	}
	return &ClaimService{repomanager: m, signer: signer, archive: arch,
		logger: logger.With("module", "claims"), tracer: telemetry.Tracer("services"), now: time.Now}
}

// ClaimVault executes beneficiary's payouts.
//
// Failures: AlreadyClaimed when the vault is claimed or this beneficiary has
// already claimed, Authorization when the address is not a beneficiary,
// NotClaimable while the inactivity period runs, ConcurrentModification when
// another write won the race, Upstream when signing fails.
func (s *ClaimService) ClaimVault(ctx context.Context, vaultID, beneficiary string) (*ClaimResult, error) {
	ctx, span := s.tracer.Start(ctx, "ClaimVault", trace.WithAttributes(attribute.String("vault.id", vaultID)))
	defer span.End()

	res, err := s.claimVault(ctx, vaultID, common.NormalizeAddress(beneficiary))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(common.KindOf(err)))
	}
	return res, err
}

func (s *ClaimService) claimVault(ctx context.Context, vaultID, beneficiary string) (*ClaimResult, error) {
	v, err := s.repomanager.Vaults().Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	pending, err := s.checkEligible(ctx, v, beneficiary)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		s.logger.Info(ctx, "resuming signed claim", common.MetaVaultID, v.ID, common.MetaBeneficiary, beneficiary)
		return s.finish(ctx, v, pending, pending.Receipts)
	}

	claim := &models.Claim{
		ID:          uuid.NewString(),
		VaultID:     v.ID,
		Beneficiary: beneficiary,
		Status:      models.ClaimPending,
		Payouts:     lifecycle.Payouts(v, beneficiary),
		CreatedAt:   s.now().UTC(),
	}

	// reserve: the version check makes exactly one of two racing claims win
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Vaults().UpdateState(ctx, v.ID, v.Version, models.VaultTriggered, v.LastActivity); err != nil {
			return err
		}
		_, err := r.Claims().Create(ctx, claim)
		return err
	})
	if err != nil {
		return nil, err
	}

	receipts, err := s.execute(ctx, v, claim)
	if err != nil {
		if delErr := s.repomanager.Claims().Delete(ctx, claim.ID); delErr != nil {
			s.logger.Error(ctx, "release of pending claim failed", common.MetaVaultID, v.ID, "claim_id", claim.ID, "error", delErr)
		}
		return nil, err
	}

	// payouts are signed from here on; the claim must never be released again
	if err := s.repomanager.Claims().RecordReceipts(ctx, claim.ID, receipts); err != nil {
		s.logger.Error(ctx, "recording receipts of signed payout failed", common.MetaVaultID, v.ID,
			"claim_id", claim.ID, "receipts", receipts, "error", err)
		return nil, err
	}
	return s.finish(ctx, v, claim, receipts)
}

// finish completes a claim whose payouts are signed, then settles the vault
// and archives the receipt.
func (s *ClaimService) finish(ctx context.Context, v *models.Vault, claim *models.Claim, receipts []models.Receipt) (*ClaimResult, error) {
	completedAt := s.now().UTC()
	if err := s.repomanager.Claims().Complete(ctx, claim.ID, receipts, completedAt); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// a concurrent retry completed it first
			return nil, common.Wrap(common.KindAlreadyClaimed, "beneficiary already claimed", err,
				common.MetaVaultID, v.ID, common.MetaBeneficiary, claim.Beneficiary)
		}
		return nil, err
	}
	claim.Status = models.ClaimCompleted
	claim.Receipts = receipts
	claim.CompletedAt = &completedAt

	s.logger.Info(ctx, "claim completed", common.MetaVaultID, v.ID, common.MetaBeneficiary, claim.Beneficiary, "payouts", len(receipts))

	s.settle(ctx, v.ID)

	res := &ClaimResult{Claim: claim}
	key, err := s.archive.Store(ctx, claim)
	if err != nil {
		s.logger.Warn(ctx, "receipt archive failed", common.MetaVaultID, v.ID, "claim_id", claim.ID, "error", err)
	} else {
		res.ArchiveKey = key
	}
	return res, nil
}

func (s *ClaimService) settle(ctx context.Context, vaultID string) {
	if _, err := settleVault(ctx, s.repomanager, s.logger, vaultID); err != nil {
		s.logger.Warn(ctx, "vault settlement deferred", common.MetaVaultID, vaultID, "error", err)
	}
}

// ReceiptURL returns a temporary link to the archived receipt of beneficiary's claim.
func (s *ClaimService) ReceiptURL(ctx context.Context, vaultID, beneficiary string) (string, error) {
	c, err := s.repomanager.Claims().Get(ctx, vaultID, common.NormalizeAddress(beneficiary))
	if err != nil {
		return "", err
	}
	if c.Status != models.ClaimCompleted {
		return "", common.NotFound("receipt", common.MetaVaultID, vaultID)
	}
	url, err := s.archive.URL(ctx, archive.ReceiptKey(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
		return "", common.Wrap(common.KindUpstream, "receipt link failed", err, common.MetaVaultID, vaultID)
	}
	return url, nil
}

// checkEligible rejects beneficiaries who may not claim. A pending claim
// that already carries receipts is returned for completion.
func (s *ClaimService) checkEligible(ctx context.Context, v *models.Vault, beneficiary string) (*models.Claim, error) {
	if v.Status == models.VaultClaimed {
		return nil, common.NewError(common.KindAlreadyClaimed, "vault already claimed", common.MetaVaultID, v.ID)
	}
	if !v.HasBeneficiary(beneficiary) {
		return nil, common.NewError(common.KindAuthorization, "address is not a beneficiary of the vault",
			common.MetaVaultID, v.ID, common.MetaBeneficiary, beneficiary)
	}
	cs := lifecycle.VaultClaimability(v, s.now())
	if !cs.Claimable {
		return nil, common.NewError(common.KindNotClaimable, "vault is not claimable",
			common.MetaVaultID, v.ID, common.MetaStatus, string(v.Status), common.MetaDaysRemaining, strconv.Itoa(cs.DaysRemaining))
	}
	c, err := s.repomanager.Claims().Get(ctx, v.ID, beneficiary)
	switch {
	case err == nil:
		if c.Status == models.ClaimPending && len(c.Receipts) > 0 {
			return c, nil
		}
		if c.Status == models.ClaimCompleted {
			// an earlier settle may have run out of attempts
			s.settle(ctx, v.ID)
		}
		return nil, common.NewError(common.KindAlreadyClaimed, "beneficiary already claimed",
			common.MetaVaultID, v.ID, common.MetaBeneficiary, beneficiary)
	case errors.Is(err, common.ErrorNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func (s *ClaimService) execute(ctx context.Context, v *models.Vault, claim *models.Claim) ([]models.Receipt, error) {
	receipts := make([]models.Receipt, 0, len(claim.Payouts))
	for _, p := range claim.Payouts {
		t, err := s.repomanager.Tokens().Get(ctx, p.TokenID)
		if err != nil {
			return nil, err
		}
		signed, err := s.signer.Sign(ctx, chain.Tx{
			From:   v.Creator,
			To:     claim.Beneficiary,
			Mint:   t.MintAddress,
			Amount: p.Amount,
			Memo:   "vault:" + v.ID,
		})
		if err != nil {
			return nil, common.Wrap(common.KindUpstream, "payout signing failed", err,
				common.MetaVaultID, v.ID, common.MetaAssetID, p.AssetID)
		}
		receipts = append(receipts, models.Receipt{AssetID: p.AssetID, TxHash: signed.Hash, Signature: signed.Signature})
	}
	return receipts, nil
}

// settleVault marks the vault claimed once every claimant has a completed
// claim, and reports whether it is claimed.
func settleVault(ctx context.Context, m repomanager.RepositoryManager, logger logging.Logger, vaultID string) (bool, error) {
	var (
		claimed bool
		err     error
	)
	for range settleAttempts {
		claimed = false
		err = m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
			v, err := r.Vaults().Get(ctx, vaultID)
			if err != nil {
				return err
			}
			if v.Status == models.VaultClaimed {
				claimed = true
				return nil
			}
			claims, err := r.Claims().ListByVault(ctx, vaultID)
			if err != nil {
				return err
			}
			if !allClaimed(lifecycle.Claimants(v), claims) {
				return nil
			}
			if !lifecycle.CanTransition(v.Status, models.VaultClaimed) {
				return common.NewError(common.KindConflict, "vault cannot be marked claimed",
					common.MetaVaultID, vaultID, common.MetaStatus, string(v.Status))
			}
			if _, err := r.Vaults().UpdateState(ctx, v.ID, v.Version, models.VaultClaimed, v.LastActivity); err != nil {
				return err
			}
			claimed = true
			logger.Info(ctx, "vault fully claimed", common.MetaVaultID, vaultID)
			return nil
		})
		if !errors.Is(err, common.ErrorConcurrentModification) {
			return claimed, err
		}
	}
	return false, err
}

func allClaimed(claimants []string, claims []*models.Claim) bool {
	done := make([]string, 0, len(claims))
	for _, c := range claims {
		if c.Status == models.ClaimCompleted {
			done = append(done, c.Beneficiary)
		}
	}
	for _, addr := range claimants {
		if !slices.Contains(done, addr) {
			return false
		}
	}
	return len(claimants) > 0
}
