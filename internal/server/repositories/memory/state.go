package memory

import (
	"maps"
	"slices"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

type state struct {
	users     map[string]*models.User
	tokens    map[string]*models.Token
	vaults    map[string]*models.Vault
	transfers map[string]*models.Transfer
	claims    map[string]*models.Claim
	refresh   map[string]*models.RefreshToken

	// seq records insertion order so listings are stable.
	seq  map[string]int64
	next int64
}

func newState() *state {
	return &state{
		users:     map[string]*models.User{},
		tokens:    map[string]*models.Token{},
		vaults:    map[string]*models.Vault{},
		transfers: map[string]*models.Transfer{},
		claims:    map[string]*models.Claim{},
		refresh:   map[string]*models.RefreshToken{},
		seq:       map[string]int64{},
	}
}

// clone copies the maps. Stored records are never mutated in place, only
// replaced, so sharing the pointed-to values between copies is safe.
func (s *state) clone() *state {
	return &state{
		users:     maps.Clone(s.users),
		tokens:    maps.Clone(s.tokens),
		vaults:    maps.Clone(s.vaults),
		transfers: maps.Clone(s.transfers),
		claims:    maps.Clone(s.claims),
		refresh:   maps.Clone(s.refresh),
		seq:       maps.Clone(s.seq),
		next:      s.next,
	}
}

func (s *state) track(id string) {
	s.next++
	s.seq[id] = s.next
}

func sortBySeq[T any](s *state, items []T, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		return int(s.seq[id(a)] - s.seq[id(b)])
	})
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyToken(t *models.Token) *models.Token {
	c := *t
	c.SupportedChains = slices.Clone(t.SupportedChains)
	if t.LayerZeroID != nil {
		id := *t.LayerZeroID
		c.LayerZeroID = &id
	}
	return &c
}

func copyVault(v *models.Vault) *models.Vault {
	c := *v
	c.Beneficiaries = slices.Clone(v.Beneficiaries)
	if v.Assets != nil {
		c.Assets = make([]models.VaultAsset, len(v.Assets))
		for i, a := range v.Assets {
			a.Allocations = maps.Clone(a.Allocations)
			if a.Allocations == nil {
				a.Allocations = map[string]decimal.Decimal{}
			}
			c.Assets[i] = a
		}
	}
	return &c
}

func copyTransfer(t *models.Transfer) *models.Transfer {
	c := *t
	if t.TxHash != nil {
		h := *t.TxHash
		c.TxHash = &h
	}
	if t.ProtocolFee != nil {
		f := *t.ProtocolFee
		c.ProtocolFee = &f
	}
	if t.GasFee != nil {
		f := *t.GasFee
		c.GasFee = &f
	}
	return &c
}

func copyClaim(cl *models.Claim) *models.Claim {
	c := *cl
	c.Payouts = slices.Clone(cl.Payouts)
	c.Receipts = slices.Clone(cl.Receipts)
	if cl.CompletedAt != nil {
		t := *cl.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
