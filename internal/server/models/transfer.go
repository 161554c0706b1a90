package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is a single cross-chain token movement.
type Transfer struct {
	ID          string
	UserID      string
	TokenID     string
	FromChain   string
	ToChain     string
	Amount      decimal.Decimal
	Recipient   string
	Status      TransferStatus
	TxHash      *string
	ProtocolFee *decimal.Decimal
	GasFee      *decimal.Decimal
	CreatedAt   time.Time
}
