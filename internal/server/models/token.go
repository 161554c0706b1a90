package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is an omnichain fungible token record owned by a user.
type Token struct {
	ID              string
	UserID          string
	MintAddress     string
	Name            string
	Symbol          string
	Decimals        int
	Balance         decimal.Decimal
	IsOFTEnabled    bool
	LayerZeroID     *string
	SupportedChains []string
	TotalTransfers  int
	CreatedAt       time.Time
}

// SupportsChain reports whether the token was registered for chain.
func (t *Token) SupportsChain(chain string) bool {
	for _, c := range t.SupportedChains {
		if c == chain {
			return true
		}
	}
	return false
}
