package models

import "github.com/shopspring/decimal"

// DashboardStats aggregates a user's holdings for the overview screen.
type DashboardStats struct {
	TotalBalance       decimal.Decimal
	ActiveVaults       int
	TotalVaults        int
	CompletedTransfers int
	OFTEnabledTokens   int
}
