package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxTokenDecimals = 18

// NewToken describes a token registration.
type NewToken struct {
	MintAddress    string
	Name           string
	Symbol         string
	Decimals       int
	InitialBalance decimal.Decimal
}

type TokenService struct {
	repomanager repomanager.RepositoryManager
	bridge      chain.BridgeClient
	logger      logging.Logger
	now         func() time.Time
}

func NewTokenService(m repomanager.RepositoryManager, bridge chain.BridgeClient, logger logging.Logger) *TokenService {
	return &TokenService{repomanager: m, bridge: bridge, logger: logger.With("module", "tokens"), now: time.Now}
}

func (s *TokenService) CreateToken(ctx context.Context, userID string, in NewToken) (*models.Token, error) {
	in.MintAddress = common.NormalizeAddress(in.MintAddress)
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	switch {
	case in.MintAddress == "":
		return nil, common.Validation("mint address is required")
	case in.Symbol == "":
		return nil, common.Validation("symbol is required")
	case in.Decimals < 0 || in.Decimals > maxTokenDecimals:
		return nil, common.Validation("decimals out of range", "decimals", strconv.Itoa(in.Decimals))
	case in.InitialBalance.IsNegative():
		return nil, common.Validation("balance must not be negative")
	}

	if _, err := s.repomanager.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	t := &models.Token{
		ID:          uuid.NewString(),
		UserID:      userID,
		MintAddress: in.MintAddress,
		Name:        strings.TrimSpace(in.Name),
		Symbol:      in.Symbol,
		Decimals:    in.Decimals,
		Balance:     in.InitialBalance,
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repomanager.Tokens().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "token created", common.MetaTokenID, created.ID, "symbol", created.Symbol)
	return created, nil
}

// UpdateTokenBalance records a synced balance for a token owned by userID.
func (s *TokenService) UpdateTokenBalance(ctx context.Context, userID, tokenID string, balance decimal.Decimal) (*models.Token, error) {
	if balance.IsNegative() {
		return nil, common.Validation("balance must not be negative", common.MetaTokenID, tokenID)
	}
	if _, err := s.owned(ctx, userID, tokenID); err != nil {
		return nil, err
	}
	return s.repomanager.Tokens().UpdateBalance(ctx, tokenID, balance)
}

func (s *TokenService) ListTokens(ctx context.Context, userID string) ([]*models.Token, error) {
	return s.repomanager.Tokens().ListByUser(ctx, userID)
}

// RegisterOFT enables omnichain transfers for a token through the bridge.
// Empty chains registers the default set.
func (s *TokenService) RegisterOFT(ctx context.Context, userID, tokenID string, chains []string) (*models.Token, error) {
	t, err := s.owned(ctx, userID, tokenID)
	if err != nil {
		return nil, err
	}
	if t.IsOFTEnabled {
		return nil, common.NewError(common.KindConflict, "token is already OFT enabled", common.MetaTokenID, tokenID)
	}
	for _, c := range chains {
		if !s.bridge.Supports(c) {
			return nil, common.Validation("unsupported chain", common.MetaTokenID, tokenID, "chain", c)
		}
	}

	reg, err := s.bridge.Register(ctx, t, chains)
	if err != nil {
		return nil, common.Wrap(common.KindUpstream, "bridge registration failed", err, common.MetaTokenID, tokenID)
	}

	updated, err := s.repomanager.Tokens().EnableOFT(ctx, tokenID, reg.ID, reg.Chains)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "token registered for omnichain transfers", common.MetaTokenID, tokenID, "registration_id", reg.ID)
	return updated, nil
}

func (s *TokenService) owned(ctx context.Context, userID, tokenID string) (*models.Token, error) {
	t, err := s.repomanager.Tokens().Get(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, common.NewError(common.KindAuthorization, "token belongs to another user", common.MetaTokenID, tokenID)
	}
	return t, nil
}
