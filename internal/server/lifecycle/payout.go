package lifecycle

import (
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

// Payout is the amount of asset owed to beneficiary: amount * pct / 100.
// A beneficiary without an allocation entry receives zero.
func Payout(asset models.VaultAsset, beneficiary string) decimal.Decimal {
	pct, ok := asset.Allocations[beneficiary]
	if !ok {
		return decimal.Zero
	}
	return asset.Amount.Mul(pct).Shift(-2)
}

// Payouts lists the non-zero payouts of v for beneficiary, in asset order.
func Payouts(v *models.Vault, beneficiary string) []models.Payout {
	var out []models.Payout
	for _, a := range v.Assets {
		amt := Payout(a, beneficiary)
		if amt.IsZero() {
			continue
		}
		out = append(out, models.Payout{AssetID: a.ID, TokenID: a.TokenID, Symbol: a.Symbol, Amount: amt})
	}
	return out
}

// TotalValue sums the USD value of assets. With a non-empty beneficiary only
// that beneficiary's allocated fraction of each asset is counted.
func TotalValue(assets []models.VaultAsset, beneficiary string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		if beneficiary == "" {
			total = total.Add(a.UsdValue)
			continue
		}
		if pct, ok := a.Allocations[beneficiary]; ok {
			total = total.Add(a.UsdValue.Mul(pct).Shift(-2))
		}
	}
	return total
}

// Claimants returns, in beneficiary order, the addresses holding a non-zero
// allocation in at least one asset. The vault is fully claimed once each has claimed.
func Claimants(v *models.Vault) []string {
	var out []string
	for _, b := range v.Beneficiaries {
		for _, a := range v.Assets {
			if pct, ok := a.Allocations[b.Address]; ok && pct.IsPositive() && a.Amount.IsPositive() {
				out = append(out, b.Address)
				break
			}
		}
	}
	return out
}
