package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/config"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(dur time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(dur)
	c.mu.Unlock()
}

type fakeOracle struct {
	prices map[string]decimal.Decimal
	err    error
}

func (o *fakeOracle) UsdPrice(_ context.Context, t *models.Token) (decimal.Decimal, error) {
	if o.err != nil {
		return decimal.Zero, o.err
	}
	return o.prices[t.Symbol], nil
}

type fakeSigner struct {
	mu    sync.Mutex
	fail  bool
	calls []chain.Tx
}

func (s *fakeSigner) Sign(_ context.Context, tx chain.Tx) (chain.SignedTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return chain.SignedTx{}, errors.New("wallet offline")
	}
	s.calls = append(s.calls, tx)
	return chain.SignedTx{Hash: "hash-" + tx.To + "-" + tx.Amount.String(), Signature: "sig"}, nil
}

type fakeArchive struct {
	mu     sync.Mutex
	stored []*models.Claim
}

func (a *fakeArchive) Store(_ context.Context, c *models.Claim) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stored = append(a.stored, c)
	return "receipts/" + c.VaultID + "/" + c.ID + ".json", nil
}

func (a *fakeArchive) URL(_ context.Context, key string) (string, error) {
	return "https://s3.local/" + key, nil
}

// env wires every service over one in-memory store and a shared clock.
type env struct {
	rm        *repomanager.MemoryRepositoryManager
	clock     *clock
	oracle    *fakeOracle
	signer    *fakeSigner
	archive   *fakeArchive
	users     *UserService
	tokens    *TokenService
	vaults    *VaultService
	claims    *ClaimService
	transfers *TransferService
	stats     *StatsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	rm := repomanager.NewMemoryRepositoryManager()
	c := &clock{t: t0}
	log := logging.Nop()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	e := &env{
		rm:      rm,
		clock:   c,
		oracle:  &fakeOracle{prices: map[string]decimal.Decimal{"SOL": d("200"), "USDC": d("1")}},
		signer:  &fakeSigner{},
		archive: &fakeArchive{},
	}
	bridge := chain.NewSimulatedBridge()

	e.users = NewUserService(rm, cfg)
	e.users.now = c.Now
	e.tokens = NewTokenService(rm, bridge, log)
	e.tokens.now = c.Now
	e.vaults = NewVaultService(rm, e.oracle, log)
	e.vaults.now = c.Now
	e.claims = NewClaimService(rm, e.signer, e.archive, log)
	e.claims.now = c.Now
	e.transfers = NewTransferService(rm, bridge, log)
	e.transfers.now = c.Now
	e.stats = NewStatsService(rm)
	e.stats.now = c.Now
	return e
}

func (e *env) user(t *testing.T, name, wallet string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), name, wallet)
	require.NoError(t, err)
	return u
}

func (e *env) token(t *testing.T, userID, mint, symbol, balance string) *models.Token {
	t.Helper()
	tok, err := e.tokens.CreateToken(context.Background(), userID, NewToken{
		MintAddress: mint, Name: symbol, Symbol: symbol, Decimals: 9, InitialBalance: d(balance),
	})
	require.NoError(t, err)
	return tok
}

// activeVault commits a vault of amount tokens split 60/40 between alice and bob.
func (e *env) activeVault(t *testing.T, owner *models.User, tok *models.Token, amount string, period int) *models.Vault {
	t.Helper()
	ctx := context.Background()
	v, err := e.vaults.CreateVaultDraft(ctx, owner.ID, "family", "", period)
	require.NoError(t, err)
	v, err = e.vaults.CommitVault(ctx, owner.ID, v.ID, VaultContents{
		Beneficiaries: []models.Beneficiary{{Name: "Alice", Address: "alice"}, {Name: "Bob", Address: "bob"}},
		Assets: []AssetCommitment{{
			ID: "asset-" + v.ID, TokenID: tok.ID, Amount: d(amount),
			Allocations: map[string]decimal.Decimal{"alice": d("60"), "bob": d("40")},
		}},
	})
	require.NoError(t, err)
	return v
}
