// Package memory implements every repository over in-process maps. It backs
// tests and the "memory" storage driver.
//
// Writers are serialized by txMu. WithTx runs fn against a private copy of
// the state and publishes it only when fn succeeds, so a failed transaction
// leaves no trace.
package memory

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/omnivault/internal/server/repositories/claims"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/transfers"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/users"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/vaults"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos is a set of repositories bound either to the live store or to a transaction.
type Repos struct {
	v *view
}

func (r *Repos) Users() users.Repository                 { return userRepo{r.v} }
func (r *Repos) Tokens() tokens.Repository               { return tokenRepo{r.v} }
func (r *Repos) Vaults() vaults.Repository               { return vaultRepo{r.v} }
func (r *Repos) Transfers() transfers.Repository         { return transferRepo{r.v} }
func (r *Repos) Claims() claims.Repository               { return claimRepo{r.v} }
func (r *Repos) RefreshTokens() refreshtokens.Repository { return refreshRepo{r.v} }

// Live returns repositories operating directly on the store.
func (s *Store) Live() *Repos {
	return &Repos{v: &view{store: s}}
}

// WithTx runs fn atomically. Changes become visible only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &Repos{v: &view{store: s, tx: work}}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// view routes reads and writes either to a transaction's private state or to the live state.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}
