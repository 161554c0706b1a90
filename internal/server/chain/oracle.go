package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

// DefaultPrices is used when the configuration does not provide any.
var DefaultPrices = map[string]string{
	"SOL":  "200",
	"ETH":  "3000",
	"USDC": "1",
}

// StaticOracle serves prices from a fixed table keyed by upper-case symbol.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle parses the price table. Keys are matched case-insensitively.
func NewStaticOracle(prices map[string]string) (*StaticOracle, error) {
	o := &StaticOracle{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, raw := range prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", sym, err)
		}
		o.prices[strings.ToUpper(sym)] = p
	}
	return o, nil
}

func (o *StaticOracle) UsdPrice(_ context.Context, token *models.Token) (decimal.Decimal, error) {
	p, ok := o.prices[strings.ToUpper(token.Symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s", token.Symbol)
	}
	return p, nil
}
