// Package tokens declares the token repository and its PostgreSQL implementation.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create stores a token. A duplicate mint address yields a conflict error.
	Create(ctx context.Context, token *models.Token) (*models.Token, error)
	Get(ctx context.Context, id string) (*models.Token, error)
	// GetForUpdate reads the token and locks its row until the enclosing
	// transaction ends, so concurrent commits see each other's allocations.
	GetForUpdate(ctx context.Context, id string) (*models.Token, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Token, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*models.Token, error)
	// EnableOFT marks the token transferable across chains.
	EnableOFT(ctx context.Context, id string, registrationID string, chains []string) (*models.Token, error)
	IncrementTransfers(ctx context.Context, id string) error
}
