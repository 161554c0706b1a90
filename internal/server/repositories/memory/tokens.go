package memory

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

type tokenRepo struct{ v *view }

func (r tokenRepo) Create(_ context.Context, t *models.Token) (*models.Token, error) {
	err := r.v.write(func(st *state) error {
		for _, existing := range st.tokens {
			if existing.MintAddress == t.MintAddress {
				return common.NewError(common.KindConflict, "mint address already registered", "mint_address", t.MintAddress)
			}
		}
		st.tokens[t.ID] = copyToken(t)
		st.track(t.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetForUpdate is Get: writers are already serialized by the store.
func (r tokenRepo) GetForUpdate(ctx context.Context, id string) (*models.Token, error) {
	return r.Get(ctx, id)
}

func (r tokenRepo) Get(_ context.Context, id string) (*models.Token, error) {
	var out *models.Token
	err := r.v.read(func(st *state) error {
		t, ok := st.tokens[id]
		if !ok {
			return common.NotFound("token", common.MetaTokenID, id)
		}
		out = copyToken(t)
		return nil
	})
	return out, err
}

func (r tokenRepo) ListByUser(_ context.Context, userID string) ([]*models.Token, error) {
	var out []*models.Token
	err := r.v.read(func(st *state) error {
		for _, t := range st.tokens {
			if t.UserID == userID {
				out = append(out, copyToken(t))
			}
		}
		sortBySeq(st, out, func(t *models.Token) string { return t.ID })
		return nil
	})
	return out, err
}

// update replaces the stored token with a modified copy.
func (r tokenRepo) update(id string, fn func(t *models.Token)) (*models.Token, error) {
	var out *models.Token
	err := r.v.write(func(st *state) error {
		t, ok := st.tokens[id]
		if !ok {
			return common.NotFound("token", common.MetaTokenID, id)
		}
		next := copyToken(t)
		fn(next)
		st.tokens[id] = next
		out = copyToken(next)
		return nil
	})
	return out, err
}

func (r tokenRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) (*models.Token, error) {
	return r.update(id, func(t *models.Token) { t.Balance = balance })
}

func (r tokenRepo) EnableOFT(_ context.Context, id string, registrationID string, chains []string) (*models.Token, error) {
	return r.update(id, func(t *models.Token) {
		t.IsOFTEnabled = true
		t.LayerZeroID = &registrationID
		t.SupportedChains = slices.Clone(chains)
	})
}

func (r tokenRepo) IncrementTransfers(_ context.Context, id string) error {
	_, err := r.update(id, func(t *models.Token) { t.TotalTransfers++ })
	return err
}
