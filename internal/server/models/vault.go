package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VaultStatus is the lifecycle state of a vault.
type VaultStatus string

const (
	VaultPending   VaultStatus = "pending"
	VaultActive    VaultStatus = "active"
	VaultTriggered VaultStatus = "triggered"
	VaultClaimed   VaultStatus = "claimed"
)

// Valid reports whether s is a known status.
func (s VaultStatus) Valid() bool {
	switch s {
	case VaultPending, VaultActive, VaultTriggered, VaultClaimed:
		return true
	}
	return false
}

// Vault commits token amounts to beneficiaries, released after InactivityPeriod days
// without owner activity.
type Vault struct {
	ID               string
	UserID           string
	Creator          string // wallet address of the owner
	Title            string
	Description      string
	Status           VaultStatus
	InactivityPeriod int
	CreatedAt        time.Time
	LastActivity     time.Time
	TotalValue       decimal.Decimal
	Beneficiaries    []Beneficiary
	Assets           []VaultAsset

	// Version is bumped on every status or activity write and used for compare-and-set.
	Version int64
}

// Beneficiary is identified by its wallet address.
type Beneficiary struct {
	ID      string
	Name    string
	Address string
}

// VaultAsset is a token amount committed to a vault.
// Allocations maps beneficiary address to a percentage share.
type VaultAsset struct {
	ID          string
	VaultID     string
	TokenID     string
	Symbol      string
	Amount      decimal.Decimal
	UsdValue    decimal.Decimal
	Allocations map[string]decimal.Decimal
	AddedAt     time.Time
}

// HasBeneficiary reports whether address is listed on the vault.
func (v *Vault) HasBeneficiary(address string) bool {
	for _, b := range v.Beneficiaries {
		if b.Address == address {
			return true
		}
	}
	return false
}
