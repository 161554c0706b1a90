package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetCommitment is one token amount committed to a vault together with its
// split between beneficiaries, keyed by beneficiary wallet address.
type AssetCommitment struct {
	// ID is optional; a new one is generated when empty.
	ID          string
	TokenID     string
	Amount      decimal.Decimal
	Allocations map[string]decimal.Decimal
}

// VaultContents is everything a draft needs besides its basic info.
type VaultContents struct {
	Assets        []AssetCommitment
	Beneficiaries []models.Beneficiary
}

type VaultService struct {
	repomanager repomanager.RepositoryManager
	oracle      chain.PriceOracle
	logger      logging.Logger
	now         func() time.Time
}

func NewVaultService(m repomanager.RepositoryManager, oracle chain.PriceOracle, logger logging.Logger) *VaultService {
	return &VaultService{repomanager: m, oracle: oracle, logger: logger.With("module", "vaults"), now: time.Now}
}

// CreateVaultDraft stores a pending vault with its basic info. Nothing is
// validated beyond ownership: incomplete drafts are refined before commit.
func (s *VaultService) CreateVaultDraft(ctx context.Context, userID, title, description string, inactivityPeriod int) (*models.Vault, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	v := &models.Vault{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		Creator:          user.WalletAddress,
		Title:            strings.TrimSpace(title),
		Description:      description,
		Status:           models.VaultPending,
		InactivityPeriod: inactivityPeriod,
		CreatedAt:        now,
		LastActivity:     now,
		TotalValue:       decimal.Zero,
		Version:          1,
	}
	created, err := s.repomanager.Vaults().Create(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "vault draft created", common.MetaVaultID, created.ID)
	return created, nil
}

// ValidateVaultDraft evaluates every draft requirement against contents without persisting anything.
func (s *VaultService) ValidateVaultDraft(ctx context.Context, userID, vaultID string, contents VaultContents) ([]lifecycle.Step, error) {
	r := s.repomanager
	v, err := s.ownedVault(ctx, r, userID, vaultID)
	if err != nil {
		return nil, err
	}
	d, tokens, err := buildDraft(ctx, r, v, contents)
	if err != nil {
		return nil, err
	}
	free, err := freeBalances(ctx, r, userID, vaultID, tokens)
	if err != nil {
		return nil, err
	}
	return d.Checklist(free), nil
}

// CommitVault applies contents to a pending vault and activates it. Either
// the whole vault with every asset and beneficiary is stored, or nothing is.
func (s *VaultService) CommitVault(ctx context.Context, userID, vaultID string, contents VaultContents) (*models.Vault, error) {
	prices, err := s.unitPrices(ctx, userID, contents.Assets)
	if err != nil {
		return nil, err
	}

	var committed *models.Vault
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		v, err := s.ownedVault(ctx, r, userID, vaultID)
		if err != nil {
			return err
		}
		d, tokens, err := buildDraft(ctx, r, v, contents)
		if err != nil {
			return err
		}
		if err := lockTokens(ctx, r, tokens); err != nil {
			return err
		}
		free, err := freeBalances(ctx, r, userID, vaultID, tokens)
		if err != nil {
			return err
		}
		next, err := lifecycle.Commit(v, d, free, prices, s.now().UTC())
		if err != nil {
			return err
		}
		committed, err = r.Vaults().Commit(ctx, next, v.Version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "vault committed", common.MetaVaultID, vaultID,
		"assets", len(committed.Assets), "beneficiaries", len(committed.Beneficiaries))
	return committed, nil
}

// RecordActivity resets the inactivity timer of an active vault. Only the
// creator may do so. Pending, triggered and claimed vaults are left as they
// are; a vault whose timer already ran out is persisted as triggered.
func (s *VaultService) RecordActivity(ctx context.Context, vaultID, actor string) error {
	actor = common.NormalizeAddress(actor)
	return s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		v, err := r.Vaults().Get(ctx, vaultID)
		if err != nil {
			return err
		}
		if v.Creator != actor {
			return common.NewError(common.KindAuthorization, "only the vault creator can record activity", common.MetaVaultID, vaultID)
		}

		now := s.now().UTC()
		switch {
		case lifecycle.Touch(v, actor, now):
			_, err = r.Vaults().UpdateState(ctx, v.ID, v.Version, v.Status, v.LastActivity)
		case v.Status == models.VaultActive && lifecycle.EffectiveStatus(v, now) == models.VaultTriggered:
			_, err = r.Vaults().UpdateState(ctx, v.ID, v.Version, models.VaultTriggered, v.LastActivity)
			s.logger.Info(ctx, "activity after inactivity period, vault triggered", common.MetaVaultID, v.ID)
		}
		return err
	})
}

func (s *VaultService) GetClaimableStatus(ctx context.Context, vaultID string) (lifecycle.ClaimStatus, error) {
	v, err := s.repomanager.Vaults().Get(ctx, vaultID)
	if err != nil {
		return lifecycle.ClaimStatus{}, err
	}
	return lifecycle.VaultClaimability(v, s.now()), nil
}

// GetVault returns the vault with its effective status. A triggered vault
// whose claims have all completed is settled on the way.
func (s *VaultService) GetVault(ctx context.Context, vaultID string) (*models.Vault, error) {
	v, err := s.repomanager.Vaults().Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if v.Status == models.VaultTriggered {
		claimed, err := settleVault(ctx, s.repomanager, s.logger, v.ID)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "vault settlement deferred", common.MetaVaultID, v.ID, "error", err)
		case claimed:
			v.Status = models.VaultClaimed
		}
	}
	v.Status = lifecycle.EffectiveStatus(v, s.now())
	return v, nil
}

func (s *VaultService) ListVaults(ctx context.Context, userID string) ([]*models.Vault, error) {
	vaults, err := s.repomanager.Vaults().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withEffectiveStatus(vaults), nil
}

// ListBeneficiaryVaults returns the vaults naming address as a beneficiary.
func (s *VaultService) ListBeneficiaryVaults(ctx context.Context, address string) ([]*models.Vault, error) {
	vaults, err := s.repomanager.Vaults().ListByBeneficiary(ctx, common.NormalizeAddress(address))
	if err != nil {
		return nil, err
	}
	return s.withEffectiveStatus(vaults), nil
}

// GetClaimableValue is the USD value of the vault, or of beneficiary's share when given.
func (s *VaultService) GetClaimableValue(ctx context.Context, vaultID, beneficiary string) (decimal.Decimal, error) {
	v, err := s.repomanager.Vaults().Get(ctx, vaultID)
	if err != nil {
		return decimal.Zero, err
	}
	return lifecycle.TotalValue(v.Assets, common.NormalizeAddress(beneficiary)), nil
}

// ResetVault reactivates a triggered vault on behalf of its creator as long
// as no beneficiary has started a claim.
func (s *VaultService) ResetVault(ctx context.Context, vaultID, actor string) (*models.Vault, error) {
	actor = common.NormalizeAddress(actor)
	var out *models.Vault
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		v, err := r.Vaults().Get(ctx, vaultID)
		if err != nil {
			return err
		}
		if v.Creator != actor {
			return common.NewError(common.KindAuthorization, "only the vault creator can reset it", common.MetaVaultID, vaultID)
		}

		claims, err := r.Claims().ListByVault(ctx, vaultID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		status := lifecycle.EffectiveStatus(v, now)
		if !lifecycle.CanReset(status, len(claims)) {
			return common.NewError(common.KindConflict, "vault cannot be reset",
				common.MetaVaultID, vaultID, common.MetaStatus, string(status), "claims", strconv.Itoa(len(claims)))
		}

		version, err := r.Vaults().UpdateState(ctx, v.ID, v.Version, models.VaultActive, now)
		if err != nil {
			return err
		}
		v.Status = models.VaultActive
		v.LastActivity = now
		v.Version = version
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "vault reset", common.MetaVaultID, vaultID)
	return out, nil
}

func (s *VaultService) withEffectiveStatus(vaults []*models.Vault) []*models.Vault {
	now := s.now()
	for _, v := range vaults {
		v.Status = lifecycle.EffectiveStatus(v, now)
	}
	return vaults
}

func (s *VaultService) ownedVault(ctx context.Context, r repomanager.Repositories, userID, vaultID string) (*models.Vault, error) {
	v, err := r.Vaults().Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, common.NewError(common.KindAuthorization, "vault belongs to another user", common.MetaVaultID, vaultID)
	}
	return v, nil
}

// unitPrices resolves the USD price of every committed token. Lookup failures
// degrade to a zero price.
func (s *VaultService) unitPrices(ctx context.Context, userID string, assets []AssetCommitment) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(assets))
	for _, a := range assets {
		if _, seen := prices[a.TokenID]; seen {
			continue
		}
		t, err := s.repomanager.Tokens().Get(ctx, a.TokenID)
		if err != nil {
			return nil, err
		}
		if t.UserID != userID {
			return nil, common.NewError(common.KindAuthorization, "token belongs to another user", common.MetaTokenID, a.TokenID)
		}
		p, err := s.oracle.UsdPrice(ctx, t)
		if err != nil {
			s.logger.Warn(ctx, "price lookup failed, using zero", common.MetaTokenID, t.ID, "symbol", t.Symbol, "error", err)
			p = decimal.Zero
		}
		prices[a.TokenID] = p
	}
	return prices, nil
}

// buildDraft replays the stored basic info and contents onto a fresh draft.
// It returns the referenced tokens keyed by id.
func buildDraft(ctx context.Context, r repomanager.Repositories, v *models.Vault, contents VaultContents) (*lifecycle.Draft, map[string]*models.Token, error) {
	d := &lifecycle.Draft{}
	d.SetBasicInfo(v.Title, v.Description, v.InactivityPeriod)

	for _, b := range contents.Beneficiaries {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		d.AddBeneficiary(b)
	}

	tokens := map[string]*models.Token{}
	seen := map[string]bool{}
	for _, a := range contents.Assets {
		if a.ID != "" {
			if seen[a.ID] {
				return nil, nil, common.Validation("duplicate asset id", common.MetaAssetID, a.ID)
			}
			seen[a.ID] = true
		}
		t, ok := tokens[a.TokenID]
		if !ok {
			var err error
			t, err = r.Tokens().Get(ctx, a.TokenID)
			if err != nil {
				return nil, nil, err
			}
			if t.UserID != v.UserID {
				return nil, nil, common.NewError(common.KindAuthorization, "token belongs to another user", common.MetaTokenID, a.TokenID)
			}
			tokens[t.ID] = t
		}

		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		d.AddAsset(lifecycle.DraftAsset{ID: id, TokenID: t.ID, Symbol: t.Symbol, Amount: a.Amount})
		for addr, pct := range a.Allocations {
			if err := d.SetAllocation(id, addr, pct); err != nil {
				return nil, nil, err
			}
		}
	}
	return d, tokens, nil
}

// lockTokens re-reads the referenced tokens with row locks, in id order, so
// concurrent commits drawing on the same token are serialized.
func lockTokens(ctx context.Context, r repomanager.Repositories, tokens map[string]*models.Token) error {
	ids := make([]string, 0, len(tokens))
	for id := range tokens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t, err := r.Tokens().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tokens[id] = t
	}
	return nil
}

// freeBalances is each token's balance minus what the user already locked in
// other vaults that are not claimed.
func freeBalances(ctx context.Context, r repomanager.Repositories, userID, vaultID string, tokens map[string]*models.Token) (map[string]decimal.Decimal, error) {
	committed, err := r.Vaults().CommittedAmounts(ctx, userID, vaultID)
	if err != nil {
		return nil, err
	}
	free := make(map[string]decimal.Decimal, len(tokens))
	for id, t := range tokens {
		free[id] = t.Balance.Sub(committed[id])
	}
	return free, nil
}
