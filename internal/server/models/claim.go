package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimCompleted ClaimStatus = "completed"
)

// Claim records one beneficiary's claim against a vault.
type Claim struct {
	ID          string
	VaultID     string
	Beneficiary string
	Status      ClaimStatus
	Payouts     []Payout
	Receipts    []Receipt
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Payout is the amount of one vault asset owed to a beneficiary.
type Payout struct {
	AssetID string          `json:"asset_id"`
	TokenID string          `json:"token_id"`
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
}

// Receipt is the signer's confirmation of an executed payout.
type Receipt struct {
	AssetID   string `json:"asset_id"`
	TxHash    string `json:"tx_hash"`
	Signature string `json:"signature"`
}
