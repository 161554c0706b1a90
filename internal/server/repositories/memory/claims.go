package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type claimRepo struct{ v *view }

func (r claimRepo) Create(_ context.Context, c *models.Claim) (*models.Claim, error) {
	err := r.v.write(func(st *state) error {
		for _, existing := range st.claims {
			if existing.VaultID == c.VaultID && existing.Beneficiary == c.Beneficiary {
				return common.NewError(common.KindAlreadyClaimed, "beneficiary already claimed",
					common.MetaVaultID, c.VaultID, common.MetaBeneficiary, c.Beneficiary)
			}
		}
		st.claims[c.ID] = copyClaim(c)
		st.track(c.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r claimRepo) Get(_ context.Context, vaultID, beneficiary string) (*models.Claim, error) {
	var out *models.Claim
	err := r.v.read(func(st *state) error {
		for _, c := range st.claims {
			if c.VaultID == vaultID && c.Beneficiary == beneficiary {
				out = copyClaim(c)
				return nil
			}
		}
		return common.NotFound("claim", common.MetaVaultID, vaultID, common.MetaBeneficiary, beneficiary)
	})
	return out, err
}

func (r claimRepo) ListByVault(_ context.Context, vaultID string) ([]*models.Claim, error) {
	var out []*models.Claim
	err := r.v.read(func(st *state) error {
		for _, c := range st.claims {
			if c.VaultID == vaultID {
				out = append(out, copyClaim(c))
			}
		}
		sortBySeq(st, out, func(c *models.Claim) string { return c.ID })
		return nil
	})
	return out, err
}

func (r claimRepo) RecordReceipts(_ context.Context, id string, receipts []models.Receipt) error {
	return r.v.write(func(st *state) error {
		c, ok := st.claims[id]
		if !ok || c.Status != models.ClaimPending {
			return common.NotFound("pending claim", "claim_id", id)
		}
		next := copyClaim(c)
		next.Receipts = slices.Clone(receipts)
		st.claims[id] = next
		return nil
	})
}

func (r claimRepo) Complete(_ context.Context, id string, receipts []models.Receipt, completedAt time.Time) error {
	return r.v.write(func(st *state) error {
		c, ok := st.claims[id]
		if !ok || c.Status != models.ClaimPending {
			return common.NotFound("pending claim", "claim_id", id)
		}
		next := copyClaim(c)
		next.Status = models.ClaimCompleted
		next.Receipts = slices.Clone(receipts)
		next.CompletedAt = &completedAt
		st.claims[id] = next
		return nil
	})
}

func (r claimRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if c, ok := st.claims[id]; ok && c.Status == models.ClaimPending {
			delete(st.claims, id)
		}
		return nil
	})
}
