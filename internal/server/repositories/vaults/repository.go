// Package vaults declares the vault repository and its PostgreSQL implementation.
//
// Every state write is a compare-and-set on Vault.Version: the write only
// applies when the stored version still equals the version the caller read,
// and bumps it by one. A miss is reported as a concurrent modification.
package vaults

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create stores a pending vault without assets or beneficiaries.
	Create(ctx context.Context, v *models.Vault) (*models.Vault, error)
	// Get loads a vault with its beneficiaries and assets in stored order.
	Get(ctx context.Context, id string) (*models.Vault, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Vault, error)
	// ListByBeneficiary returns the vaults naming address as a beneficiary.
	ListByBeneficiary(ctx context.Context, address string) ([]*models.Vault, error)
	// Commit writes the activated vault with its assets and beneficiaries.
	Commit(ctx context.Context, v *models.Vault, expectedVersion int64) (*models.Vault, error)
	// UpdateState sets status and last activity, returning the new version.
	UpdateState(ctx context.Context, id string, expectedVersion int64, status models.VaultStatus, lastActivity time.Time) (int64, error)
	// CommittedAmounts sums, per token, the amounts the user has locked in
	// vaults that are not claimed, skipping excludeVaultID.
	CommittedAmounts(ctx context.Context, userID string, excludeVaultID string) (map[string]decimal.Decimal, error)
}
