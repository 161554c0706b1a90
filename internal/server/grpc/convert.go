package grpc

import (
	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/services"
)

func toUser(u *models.User) api.User {
	return api.User{ID: u.ID, WalletAddress: u.WalletAddress, Username: u.UserName, CreatedAt: u.CreatedAt}
}

func toToken(t *models.Token) api.Token {
	out := api.Token{
		ID:              t.ID,
		MintAddress:     t.MintAddress,
		Name:            t.Name,
		Symbol:          t.Symbol,
		Decimals:        t.Decimals,
		Balance:         t.Balance,
		IsOFTEnabled:    t.IsOFTEnabled,
		SupportedChains: t.SupportedChains,
		TotalTransfers:  t.TotalTransfers,
		CreatedAt:       t.CreatedAt,
	}
	if t.LayerZeroID != nil {
		out.LayerZeroID = *t.LayerZeroID
	}
	return out
}

func toTokens(ts []*models.Token) []api.Token {
	out := make([]api.Token, 0, len(ts))
	for _, t := range ts {
		out = append(out, toToken(t))
	}
	return out
}

func toVault(v *models.Vault) api.Vault {
	out := api.Vault{
		ID:               v.ID,
		Creator:          v.Creator,
		Title:            v.Title,
		Description:      v.Description,
		Status:           string(v.Status),
		InactivityPeriod: v.InactivityPeriod,
		CreatedAt:        v.CreatedAt,
		LastActivity:     v.LastActivity,
		TotalValue:       v.TotalValue,
		Beneficiaries:    make([]api.Beneficiary, 0, len(v.Beneficiaries)),
		Assets:           make([]api.VaultAsset, 0, len(v.Assets)),
	}
	for _, b := range v.Beneficiaries {
		out.Beneficiaries = append(out.Beneficiaries, api.Beneficiary{ID: b.ID, Name: b.Name, Address: b.Address})
	}
	for _, a := range v.Assets {
		out.Assets = append(out.Assets, api.VaultAsset{
			ID:          a.ID,
			TokenID:     a.TokenID,
			Symbol:      a.Symbol,
			Amount:      a.Amount,
			UsdValue:    a.UsdValue,
			Allocations: a.Allocations,
			AddedAt:     a.AddedAt,
		})
	}
	return out
}

func toVaults(vs []*models.Vault) []api.Vault {
	out := make([]api.Vault, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVault(v))
	}
	return out
}

func toContents(req *api.VaultContentsRequest) services.VaultContents {
	c := services.VaultContents{
		Assets:        make([]services.AssetCommitment, 0, len(req.Assets)),
		Beneficiaries: make([]models.Beneficiary, 0, len(req.Beneficiaries)),
	}
	for _, a := range req.Assets {
		c.Assets = append(c.Assets, services.AssetCommitment{
			ID: a.ID, TokenID: a.TokenID, Amount: a.Amount, Allocations: a.Allocations,
		})
	}
	for _, b := range req.Beneficiaries {
		c.Beneficiaries = append(c.Beneficiaries, models.Beneficiary{ID: b.ID, Name: b.Name, Address: b.Address})
	}
	return c
}

func toSteps(steps []lifecycle.Step) ([]api.ChecklistStep, bool) {
	out := make([]api.ChecklistStep, 0, len(steps))
	valid := true
	for _, s := range steps {
		step := api.ChecklistStep{Name: s.Name, Done: s.Done()}
		if s.Err != nil {
			valid = false
			step.Message = s.Err.Message
			step.Metadata = s.Err.Metadata
		}
		out = append(out, step)
	}
	return out, valid
}

func toClaim(c *models.Claim) api.Claim {
	out := api.Claim{
		ID:          c.ID,
		VaultID:     c.VaultID,
		Beneficiary: c.Beneficiary,
		Status:      string(c.Status),
		Payouts:     make([]api.Payout, 0, len(c.Payouts)),
		Receipts:    make([]api.Receipt, 0, len(c.Receipts)),
		CreatedAt:   c.CreatedAt,
		CompletedAt: c.CompletedAt,
	}
	for _, p := range c.Payouts {
		out.Payouts = append(out.Payouts, api.Payout{AssetID: p.AssetID, TokenID: p.TokenID, Symbol: p.Symbol, Amount: p.Amount})
	}
	for _, r := range c.Receipts {
		out.Receipts = append(out.Receipts, api.Receipt{AssetID: r.AssetID, TxHash: r.TxHash, Signature: r.Signature})
	}
	return out
}

func toTransfer(t *models.Transfer) api.Transfer {
	out := api.Transfer{
		ID:          t.ID,
		TokenID:     t.TokenID,
		FromChain:   t.FromChain,
		ToChain:     t.ToChain,
		Amount:      t.Amount,
		Recipient:   t.Recipient,
		Status:      string(t.Status),
		ProtocolFee: t.ProtocolFee,
		GasFee:      t.GasFee,
		CreatedAt:   t.CreatedAt,
	}
	if t.TxHash != nil {
		out.TxHash = *t.TxHash
	}
	return out
}

func toTransfers(ts []*models.Transfer) []api.Transfer {
	out := make([]api.Transfer, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransfer(t))
	}
	return out
}
