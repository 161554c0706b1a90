package client

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/client/repositories/state"
)

const (
	keyWallet       = "wallet"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Session is the persisted login of the local user.
type Session struct {
	repo state.Repository
}

func NewSession(repo state.Repository) *Session {
	return &Session{repo: repo}
}

func (s *Session) Wallet(ctx context.Context) (string, error) {
	v, _, err := s.repo.Get(ctx, keyWallet)
	return v, err
}

func (s *Session) Tokens(ctx context.Context) (Tokens, error) {
	var t Tokens
	var err error
	if t.AccessToken, _, err = s.repo.Get(ctx, keyAccessToken); err != nil {
		return Tokens{}, err
	}
	if t.RefreshToken, _, err = s.repo.Get(ctx, keyRefreshToken); err != nil {
		return Tokens{}, err
	}
	return t, nil
}

func (s *Session) Save(ctx context.Context, wallet string, t Tokens) error {
	if wallet != "" {
		if err := s.repo.Set(ctx, keyWallet, wallet); err != nil {
			return err
		}
	}
	return s.SaveTokens(ctx, t)
}

func (s *Session) SaveTokens(ctx context.Context, t Tokens) error {
	if err := s.repo.Set(ctx, keyAccessToken, t.AccessToken); err != nil {
		return err
	}
	return s.repo.Set(ctx, keyRefreshToken, t.RefreshToken)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
