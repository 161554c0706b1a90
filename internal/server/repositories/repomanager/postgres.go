package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/omnivault/internal/dbx"
	"github.com/dmitrijs2005/omnivault/internal/server/migrations"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/claims"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/transfers"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/users"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/vaults"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// pgRepos binds the PostgreSQL repositories to a DBTX (pool or transaction).
type pgRepos struct {
	db dbx.DBTX
}

func (r pgRepos) Users() users.Repository {
	return users.NewPostgresRepository(r.db)
}

func (r pgRepos) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(r.db)
}

func (r pgRepos) Tokens() tokens.Repository {
	return tokens.NewPostgresRepository(r.db)
}

func (r pgRepos) Vaults() vaults.Repository {
	return vaults.NewPostgresRepository(r.db)
}

func (r pgRepos) Transfers() transfers.Repository {
	return transfers.NewPostgresRepository(r.db)
}

func (r pgRepos) Claims() claims.Repository {
	return claims.NewPostgresRepository(r.db)
}

// PostgresRepositoryManager vends PostgreSQL-backed repositories and exposes
// a schema migration hook.
type PostgresRepositoryManager struct {
	pgRepos
	sqlDB *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// RunMigrations sets up goose with the embedded migrations and runs them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.sqlDB, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.sqlDB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, pgRepos{db: tx})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.sqlDB.Close()
}

// NewPostgresRepositoryManager wraps an open database handle.
func NewPostgresRepositoryManager(db *sql.DB) (*PostgresRepositoryManager, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database handle")
	}
	return &PostgresRepositoryManager{pgRepos: pgRepos{db: db}, sqlDB: db}, nil
}

// OpenPostgres opens a pgx connection pool for dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepositoryManager(db)
}
