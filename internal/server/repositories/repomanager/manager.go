// Package repomanager hands out the storage adapter used by the services:
// repositories bound either to the database or to an open transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/server/repositories/claims"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/transfers"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/users"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/vaults"
)

// Repositories is the set of repositories available to a unit of work.
type Repositories interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Tokens() tokens.Repository
	Vaults() vaults.Repository
	Transfers() transfers.Repository
	Claims() claims.Repository
}

// RepositoryManager owns the storage backend.
type RepositoryManager interface {
	Repositories

	RunMigrations(ctx context.Context) error
	// WithTx runs fn atomically: every write made through r is committed when
	// fn returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
