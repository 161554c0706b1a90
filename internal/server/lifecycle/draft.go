// Package lifecycle holds the vault rules: draft validation, the status
// machine, claimability and payout arithmetic. Everything here is pure;
// callers resolve balances, prices and time before calling in.
package lifecycle

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	MinInactivityDays = 1
	MaxInactivityDays = 365
)

// Validation messages returned by Draft.Validate.
const (
	MsgBasicInfoIncomplete = "basic info incomplete"
	MsgNoAssets            = "no assets"
	MsgInsufficientBalance = "insufficient balance"
	MsgNoBeneficiaries     = "no beneficiaries"
	MsgAllocationMismatch  = "allocation mismatch"
)

var hundred = decimal.NewFromInt(100)

// DraftAsset is an asset commitment inside a draft.
type DraftAsset struct {
	ID          string
	TokenID     string
	Symbol      string
	Amount      decimal.Decimal
	Allocations map[string]decimal.Decimal
}

// Draft accumulates vault data before commit. Setters may be called in any
// order; Validate reports the first unmet requirement.
type Draft struct {
	Title            string
	Description      string
	InactivityPeriod int
	Assets           []DraftAsset
	Beneficiaries    []models.Beneficiary
}

func (d *Draft) SetBasicInfo(title, description string, inactivityPeriod int) {
	d.Title = strings.TrimSpace(title)
	d.Description = description
	d.InactivityPeriod = inactivityPeriod
}

// AddAsset appends an asset, or replaces the one with the same ID while keeping its allocations.
func (d *Draft) AddAsset(a DraftAsset) {
	for i := range d.Assets {
		if d.Assets[i].ID == a.ID {
			if a.Allocations == nil {
				a.Allocations = d.Assets[i].Allocations
			}
			d.Assets[i] = a
			return
		}
	}
	if a.Allocations == nil {
		a.Allocations = map[string]decimal.Decimal{}
	}
	d.Assets = append(d.Assets, a)
}

// AddBeneficiary appends a beneficiary in order. Re-adding an address updates its name in place.
func (d *Draft) AddBeneficiary(b models.Beneficiary) {
	b.Address = common.NormalizeAddress(b.Address)
	for i := range d.Beneficiaries {
		if d.Beneficiaries[i].Address == b.Address {
			d.Beneficiaries[i].Name = b.Name
			return
		}
	}
	d.Beneficiaries = append(d.Beneficiaries, b)
}

// RemoveBeneficiary drops the beneficiary and every allocation made to it.
func (d *Draft) RemoveBeneficiary(address string) {
	address = common.NormalizeAddress(address)
	out := d.Beneficiaries[:0]
	for _, b := range d.Beneficiaries {
		if b.Address != address {
			out = append(out, b)
		}
	}
	d.Beneficiaries = out
	for i := range d.Assets {
		delete(d.Assets[i].Allocations, address)
	}
}

// SetAllocation sets the percentage of asset assetID going to address.
// A zero percentage removes the entry.
func (d *Draft) SetAllocation(assetID, address string, pct decimal.Decimal) error {
	address = common.NormalizeAddress(address)
	for i := range d.Assets {
		if d.Assets[i].ID != assetID {
			continue
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return common.Validation("allocation out of range", common.MetaAssetID, assetID, common.MetaBeneficiary, address)
		}
		if d.Assets[i].Allocations == nil {
			d.Assets[i].Allocations = map[string]decimal.Decimal{}
		}
		if pct.IsZero() {
			delete(d.Assets[i].Allocations, address)
		} else {
			d.Assets[i].Allocations[address] = pct
		}
		return nil
	}
	return common.NotFound("asset", common.MetaAssetID, assetID)
}

// Validate runs the draft checks in order and returns the first failure.
// freeBalances maps token id to the balance not committed to other vaults.
func (d *Draft) Validate(freeBalances map[string]decimal.Decimal) error {
	for _, step := range d.steps(freeBalances) {
		if err := step.check(); err != nil {
			return err
		}
	}
	return nil
}

// Step is one line of the draft checklist.
type Step struct {
	Name string
	Err  *common.Error
}

func (s Step) Done() bool { return s.Err == nil }

// Checklist evaluates every check independently.
func (d *Draft) Checklist(freeBalances map[string]decimal.Decimal) []Step {
	steps := d.steps(freeBalances)
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		out = append(out, Step{Name: s.name, Err: s.check()})
	}
	return out
}

type draftStep struct {
	name  string
	check func() *common.Error
}

func (d *Draft) steps(free map[string]decimal.Decimal) []draftStep {
	return []draftStep{
		{"basic_info", d.checkBasicInfo},
		{"assets", func() *common.Error { return d.checkAssets(free) }},
		{"beneficiaries", d.checkBeneficiaries},
		{"allocations", d.checkAllocations},
	}
}

func (d *Draft) checkBasicInfo() *common.Error {
	if d.Title == "" || d.InactivityPeriod < MinInactivityDays || d.InactivityPeriod > MaxInactivityDays {
		return common.Validation(MsgBasicInfoIncomplete)
	}
	return nil
}

func (d *Draft) checkAssets(free map[string]decimal.Decimal) *common.Error {
	if len(d.Assets) == 0 {
		return common.Validation(MsgNoAssets)
	}

	requested := map[string]decimal.Decimal{}
	for _, a := range d.Assets {
		if !a.Amount.IsPositive() {
			return common.Validation(MsgNoAssets, common.MetaAssetID, a.ID)
		}
		requested[a.TokenID] = requested[a.TokenID].Add(a.Amount)
	}

	for _, a := range d.Assets {
		if requested[a.TokenID].GreaterThan(free[a.TokenID]) {
			return common.Validation(MsgInsufficientBalance,
				common.MetaAssetID, a.ID, common.MetaTokenID, a.TokenID)
		}
	}
	return nil
}

func (d *Draft) checkBeneficiaries() *common.Error {
	if len(d.Beneficiaries) == 0 {
		return common.Validation(MsgNoBeneficiaries)
	}
	for _, b := range d.Beneficiaries {
		if b.Address == "" {
			return common.Validation(MsgNoBeneficiaries)
		}
	}
	return nil
}

func (d *Draft) checkAllocations() *common.Error {
	listed := make(map[string]struct{}, len(d.Beneficiaries))
	for _, b := range d.Beneficiaries {
		listed[b.Address] = struct{}{}
	}

	for _, a := range d.Assets {
		total := decimal.Zero
		for addr, pct := range a.Allocations {
			if _, ok := listed[addr]; !ok {
				return common.Validation(MsgAllocationMismatch,
					common.MetaAssetID, a.ID, common.MetaBeneficiary, addr, common.MetaCurrentTotal, sumAllocations(a).String())
			}
			total = total.Add(pct)
		}
		if !total.Equal(hundred) {
			return common.Validation(MsgAllocationMismatch,
				common.MetaAssetID, a.ID, common.MetaCurrentTotal, total.String())
		}
	}
	return nil
}

func sumAllocations(a DraftAsset) decimal.Decimal {
	total := decimal.Zero
	for _, pct := range a.Allocations {
		total = total.Add(pct)
	}
	return total
}

// Commit validates the draft and applies it to the pending vault v, returning the
// activated copy. unitPrices maps token id to USD price; missing prices count as zero.
func Commit(v *models.Vault, d *Draft, freeBalances, unitPrices map[string]decimal.Decimal, now time.Time) (*models.Vault, error) {
	if v.Status != models.VaultPending {
		return nil, common.NewError(common.KindConflict, "vault is not pending",
			common.MetaVaultID, v.ID, common.MetaStatus, string(v.Status))
	}
	if err := d.Validate(freeBalances); err != nil {
		e := err.(*common.Error)
		if e.Metadata == nil {
			e.Metadata = map[string]string{}
		}
		e.Metadata[common.MetaVaultID] = v.ID
		return nil, e
	}

	out := *v
	out.Title = d.Title
	out.Description = d.Description
	out.InactivityPeriod = d.InactivityPeriod
	out.Status = models.VaultActive
	out.LastActivity = now

	out.Beneficiaries = make([]models.Beneficiary, len(d.Beneficiaries))
	copy(out.Beneficiaries, d.Beneficiaries)

	out.Assets = make([]models.VaultAsset, 0, len(d.Assets))
	for _, a := range d.Assets {
		alloc := make(map[string]decimal.Decimal, len(a.Allocations))
		for k, pct := range a.Allocations {
			alloc[k] = pct
		}
		out.Assets = append(out.Assets, models.VaultAsset{
			ID:          a.ID,
			VaultID:     v.ID,
			TokenID:     a.TokenID,
			Symbol:      a.Symbol,
			Amount:      a.Amount,
			UsdValue:    a.Amount.Mul(unitPrices[a.TokenID]),
			Allocations: alloc,
			AddedAt:     now,
		})
	}
	out.TotalValue = TotalValue(out.Assets, "")

	return &out, nil
}

// ParsePercent parses an allocation percentage such as "60" or "33.5".
func ParsePercent(s string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, common.Validation("invalid percentage", "value", strconv.Quote(s))
	}
	return pct, nil
}
