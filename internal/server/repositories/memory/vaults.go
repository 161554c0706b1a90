package memory

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

type vaultRepo struct{ v *view }

func concurrent(id string, version int64) error {
	return common.NewError(common.KindConcurrentModification, "vault was modified concurrently",
		common.MetaVaultID, id, "expected_version", strconv.FormatInt(version, 10))
}

func (r vaultRepo) Create(_ context.Context, v *models.Vault) (*models.Vault, error) {
	err := r.v.write(func(st *state) error {
		if _, ok := st.vaults[v.ID]; ok {
			return common.NewError(common.KindConflict, "vault already exists", common.MetaVaultID, v.ID)
		}
		st.vaults[v.ID] = copyVault(v)
		st.track(v.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r vaultRepo) Get(_ context.Context, id string) (*models.Vault, error) {
	var out *models.Vault
	err := r.v.read(func(st *state) error {
		v, ok := st.vaults[id]
		if !ok {
			return common.NotFound("vault", common.MetaVaultID, id)
		}
		out = copyVault(v)
		return nil
	})
	return out, err
}

func (r vaultRepo) list(match func(v *models.Vault) bool) ([]*models.Vault, error) {
	var out []*models.Vault
	err := r.v.read(func(st *state) error {
		for _, v := range st.vaults {
			if match(v) {
				out = append(out, copyVault(v))
			}
		}
		sortBySeq(st, out, func(v *models.Vault) string { return v.ID })
		return nil
	})
	return out, err
}

func (r vaultRepo) ListByUser(_ context.Context, userID string) ([]*models.Vault, error) {
	return r.list(func(v *models.Vault) bool { return v.UserID == userID })
}

func (r vaultRepo) ListByBeneficiary(_ context.Context, address string) ([]*models.Vault, error) {
	return r.list(func(v *models.Vault) bool { return v.HasBeneficiary(address) })
}

func (r vaultRepo) Commit(_ context.Context, v *models.Vault, expectedVersion int64) (*models.Vault, error) {
	var out *models.Vault
	err := r.v.write(func(st *state) error {
		cur, ok := st.vaults[v.ID]
		if !ok {
			return common.NotFound("vault", common.MetaVaultID, v.ID)
		}
		if cur.Version != expectedVersion {
			return concurrent(v.ID, expectedVersion)
		}
		next := copyVault(v)
		next.Version = expectedVersion + 1
		st.vaults[v.ID] = next
		out = copyVault(next)
		return nil
	})
	return out, err
}

func (r vaultRepo) UpdateState(_ context.Context, id string, expectedVersion int64, status models.VaultStatus, lastActivity time.Time) (int64, error) {
	var version int64
	err := r.v.write(func(st *state) error {
		cur, ok := st.vaults[id]
		if !ok {
			return common.NotFound("vault", common.MetaVaultID, id)
		}
		if cur.Version != expectedVersion {
			return concurrent(id, expectedVersion)
		}
		next := copyVault(cur)
		next.Status = status
		next.LastActivity = lastActivity
		next.Version = expectedVersion + 1
		st.vaults[id] = next
		version = next.Version
		return nil
	})
	return version, err
}

func (r vaultRepo) CommittedAmounts(_ context.Context, userID string, excludeVaultID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.v.read(func(st *state) error {
		for _, v := range st.vaults {
			if v.UserID != userID || v.ID == excludeVaultID || v.Status == models.VaultClaimed {
				continue
			}
			for _, a := range v.Assets {
				out[a.TokenID] = out[a.TokenID].Add(a.Amount)
			}
		}
		return nil
	})
	return out, err
}
