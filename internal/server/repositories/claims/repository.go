// Package claims declares the per-(vault, beneficiary) claim repository and
// its PostgreSQL implementation. At most one claim row exists per pair.
package claims

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type Repository interface {
	// Create reserves a pending claim. A second claim for the same pair yields
	// an already-claimed error.
	Create(ctx context.Context, c *models.Claim) (*models.Claim, error)
	Get(ctx context.Context, vaultID, beneficiary string) (*models.Claim, error)
	ListByVault(ctx context.Context, vaultID string) ([]*models.Claim, error)
	// RecordReceipts stores the receipts of a signed payout on a pending claim,
	// so a later retry can complete it without signing again.
	RecordReceipts(ctx context.Context, id string, receipts []models.Receipt) error
	// Complete stores the receipts and marks the claim completed.
	Complete(ctx context.Context, id string, receipts []models.Receipt, completedAt time.Time) error
	// Delete releases a pending claim after a failed payout.
	Delete(ctx context.Context, id string) error
}
