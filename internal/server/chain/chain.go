// Package chain defines the capabilities the server needs from the outside
// world (prices, signing, bridging) together with simulated implementations.
package chain

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

// Supported chain names for bridged transfers.
const (
	Solana    = "solana"
	Ethereum  = "ethereum"
	Polygon   = "polygon"
	Avalanche = "avalanche"
	BSC       = "bsc"
)

// DefaultChains are the chains a token is registered for when none are requested.
var DefaultChains = []string{Ethereum, Polygon, Avalanche, BSC}

// PriceOracle resolves the USD unit price of a token.
type PriceOracle interface {
	UsdPrice(ctx context.Context, token *models.Token) (decimal.Decimal, error)
}

// Tx is an unsigned payout transaction.
type Tx struct {
	From   string
	To     string
	Mint   string
	Amount decimal.Decimal
	Memo   string
}

// SignedTx is a transaction accepted by the network.
type SignedTx struct {
	Hash      string
	Signature string
}

// TransactionSigner signs and submits a payout transaction.
type TransactionSigner interface {
	Sign(ctx context.Context, tx Tx) (SignedTx, error)
}

// TransferRequest describes a bridged token movement.
type TransferRequest struct {
	Mint      string
	FromChain string
	ToChain   string
	Amount    decimal.Decimal
	Recipient string
}

// TransferReceipt is what the bridge reports for a submitted transfer.
type TransferReceipt struct {
	TxHash      string
	ProtocolFee decimal.Decimal
	GasFee      decimal.Decimal
}

// Registration is the result of enabling a token for omnichain transfers.
type Registration struct {
	ID     string
	Chains []string
}

// BridgeClient moves tokens between chains.
type BridgeClient interface {
	Register(ctx context.Context, token *models.Token, chains []string) (Registration, error)
	Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error)
	Supports(chain string) bool
}
