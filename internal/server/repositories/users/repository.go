// Package users declares the user repository contract and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type Repository interface {
	// Create stores a user. A taken username or wallet yields a conflict error.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByWallet(ctx context.Context, wallet string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
