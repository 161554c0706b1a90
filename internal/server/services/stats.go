package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// StatsService aggregates the dashboard overview of a user.
type StatsService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewStatsService(m repomanager.RepositoryManager) *StatsService {
	return &StatsService{repomanager: m, now: time.Now}
}

// GetDashboardStats counts vaults by their effective status, so a vault
// whose timer ran out is no longer reported as active.
func (s *StatsService) GetDashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	tokens, err := s.repomanager.Tokens().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	vaults, err := s.repomanager.Vaults().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.repomanager.Transfers().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &models.DashboardStats{TotalBalance: decimal.Zero, TotalVaults: len(vaults)}
	for _, t := range tokens {
		st.TotalBalance = st.TotalBalance.Add(t.Balance)
		if t.IsOFTEnabled {
			st.OFTEnabledTokens++
		}
	}
	now := s.now()
	for _, v := range vaults {
		if lifecycle.EffectiveStatus(v, now) == models.VaultActive {
			st.ActiveVaults++
		}
	}
	for _, t := range transfers {
		if t.Status == models.TransferCompleted {
			st.CompletedTransfers++
		}
	}
	return st, nil
}
