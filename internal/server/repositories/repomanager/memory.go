package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/omnivault/internal/server/repositories/memory"
)

// MemoryRepositoryManager keeps everything in process. Data is lost on exit.
type MemoryRepositoryManager struct {
	*memory.Repos
	store *memory.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	s := memory.NewStore()
	return &MemoryRepositoryManager{Repos: s.Live(), store: s}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return m.store.WithTx(ctx, func(ctx context.Context, r *memory.Repos) error {
		return fn(ctx, r)
	})
}

func (m *MemoryRepositoryManager) Close() error { return nil }

// New builds the manager for the configured storage driver.
func New(ctx context.Context, driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case "", "memory":
		return NewMemoryRepositoryManager(), nil
	case "postgres":
		m, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
