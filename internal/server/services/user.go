// Package services contains the server-side business logic. Services load
// state through the repository manager, apply the lifecycle rules and persist
// the outcome, one transaction per operation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/auth"
	"github.com/dmitrijs2005/omnivault/internal/server/config"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService registers wallets and issues sessions for them.
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// CreateUser registers a wallet. It is idempotent by wallet: an already
// registered wallet returns the stored user. A username taken by another
// wallet yields a conflict.
func (s *UserService) CreateUser(ctx context.Context, username, wallet string) (*models.User, error) {
	username = strings.TrimSpace(username)
	wallet = common.NormalizeAddress(wallet)
	if username == "" || wallet == "" {
		return nil, common.Validation("username and wallet address are required")
	}

	repo := s.repomanager.Users()

	existing, err := repo.GetByWallet(ctx, wallet)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	user := &models.User{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		UserName:      username,
		CreatedAt:     s.now().UTC(),
	}
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			// the wallet may have been registered concurrently
			if existing, getErr := repo.GetByWallet(ctx, wallet); getErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return created, nil
}

func (s *UserService) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	return s.repomanager.Users().GetByWallet(ctx, common.NormalizeAddress(wallet))
}

// Login issues a session for a registered wallet.
func (s *UserService) Login(ctx context.Context, wallet string) (*TokenPair, error) {
	user, err := s.repomanager.Users().GetByWallet(ctx, common.NormalizeAddress(wallet))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return s.generateTokenPair(ctx, s.repomanager, user)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens().Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.RefreshTokens().Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := r.Users().GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		pair, err = s.generateTokenPair(ctx, r, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, r repomanager.Repositories, user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateToken(auth.Identity{UserID: user.ID, Wallet: user.WalletAddress}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "sign access token", err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.Wrap(common.KindInternal, "generate refresh token", err)
	}
	if err := r.RefreshTokens().Create(ctx, user.ID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
