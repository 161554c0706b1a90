package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTransfer describes a cross-chain movement of an OFT enabled token.
type NewTransfer struct {
	TokenID   string
	FromChain string
	ToChain   string
	Amount    decimal.Decimal
	Recipient string
}

type TransferService struct {
	repomanager repomanager.RepositoryManager
	bridge      chain.BridgeClient
	logger      logging.Logger
	now         func() time.Time
}

func NewTransferService(m repomanager.RepositoryManager, bridge chain.BridgeClient, logger logging.Logger) *TransferService {
	return &TransferService{repomanager: m, bridge: bridge, logger: logger.With("module", "transfers"), now: time.Now}
}

// CreateTransfer submits the transfer to the bridge and records it as pending
// with the bridge's hash and fees. A rejected submission stores nothing.
func (s *TransferService) CreateTransfer(ctx context.Context, userID string, in NewTransfer) (*models.Transfer, error) {
	in.Recipient = common.NormalizeAddress(in.Recipient)

	t, err := s.repomanager.Tokens().Get(ctx, in.TokenID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, common.NewError(common.KindAuthorization, "token belongs to another user", common.MetaTokenID, in.TokenID)
	}
	if err := validateTransfer(t, in); err != nil {
		return nil, err
	}

	receipt, err := s.bridge.Transfer(ctx, chain.TransferRequest{
		Mint:      t.MintAddress,
		FromChain: in.FromChain,
		ToChain:   in.ToChain,
		Amount:    in.Amount,
		Recipient: in.Recipient,
	})
	if err != nil {
		return nil, common.Wrap(common.KindUpstream, "bridge transfer failed", err, common.MetaTokenID, in.TokenID)
	}

	tr := &models.Transfer{
		ID:          uuid.NewString(),
		UserID:      userID,
		TokenID:     t.ID,
		FromChain:   in.FromChain,
		ToChain:     in.ToChain,
		Amount:      in.Amount,
		Recipient:   in.Recipient,
		Status:      models.TransferPending,
		TxHash:      &receipt.TxHash,
		ProtocolFee: &receipt.ProtocolFee,
		GasFee:      &receipt.GasFee,
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repomanager.Transfers().Create(ctx, tr)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "transfer submitted", common.MetaTransferID, created.ID, "from", in.FromChain, "to", in.ToChain)
	return created, nil
}

func validateTransfer(t *models.Token, in NewTransfer) error {
	kv := []string{common.MetaTokenID, t.ID}
	switch {
	case !t.IsOFTEnabled:
		return common.Validation("token is not OFT enabled", kv...)
	case in.FromChain == in.ToChain:
		return common.Validation("source and destination chain must differ", kv...)
	case !chainAllowed(t, in.FromChain) || !chainAllowed(t, in.ToChain):
		return common.Validation("chain not supported by token", append(kv, "from", in.FromChain, "to", in.ToChain)...)
	case !in.Amount.IsPositive():
		return common.Validation("amount must be positive", kv...)
	case in.Amount.GreaterThan(t.Balance):
		return common.Validation(lifecycle.MsgInsufficientBalance, kv...)
	case in.Recipient == "":
		return common.Validation("recipient is required", kv...)
	}
	return nil
}

// chainAllowed accepts the token's home chain and the chains it was registered for.
func chainAllowed(t *models.Token, c string) bool {
	return c == chain.Solana || t.SupportsChain(c)
}

// UpdateTransferStatus settles a pending transfer. Completing a transfer
// bumps the token's transfer counter in the same transaction.
func (s *TransferService) UpdateTransferStatus(ctx context.Context, userID, transferID string, status models.TransferStatus, txHash *string) (*models.Transfer, error) {
	if status != models.TransferCompleted && status != models.TransferFailed {
		return nil, common.Validation("status must be completed or failed", common.MetaTransferID, transferID, common.MetaStatus, string(status))
	}

	var out *models.Transfer
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		cur, err := r.Transfers().Get(ctx, transferID)
		if err != nil {
			return err
		}
		if cur.UserID != userID {
			return common.NewError(common.KindAuthorization, "transfer belongs to another user", common.MetaTransferID, transferID)
		}
		if cur.Status != models.TransferPending {
			return common.NewError(common.KindConflict, "transfer already settled",
				common.MetaTransferID, transferID, common.MetaStatus, string(cur.Status))
		}

		out, err = r.Transfers().UpdateStatus(ctx, transferID, status, txHash)
		if err != nil {
			return err
		}
		if status == models.TransferCompleted {
			return r.Tokens().IncrementTransfers(ctx, cur.TokenID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "transfer settled", common.MetaTransferID, transferID, common.MetaStatus, string(status))
	return out, nil
}

func (s *TransferService) ListTransfers(ctx context.Context, userID string) ([]*models.Transfer, error) {
	return s.repomanager.Transfers().ListByUser(ctx, userID)
}
