// Package transfers declares the cross-chain transfer repository and its PostgreSQL implementation.
package transfers

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error)
	Get(ctx context.Context, id string) (*models.Transfer, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Transfer, error)
	// UpdateStatus moves a pending transfer to status. A nil txHash keeps the stored one.
	UpdateStatus(ctx context.Context, id string, status models.TransferStatus, txHash *string) (*models.Transfer, error)
}
