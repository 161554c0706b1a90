package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "owner", "owner-wallet")
	sol := oftToken(t, e, u.ID)
	e.token(t, u.ID, "mint-usdc", "USDC", "2.5")

	e.activeVault(t, u, sol, "10", 30)
	e.activeVault(t, u, sol, "10", 90)
	_, err := e.vaults.CreateVaultDraft(ctx, u.ID, "draft", "", 30)
	require.NoError(t, err)

	tr, err := e.transfers.CreateTransfer(ctx, u.ID, NewTransfer{
		TokenID: sol.ID, FromChain: chain.Solana, ToChain: chain.BSC, Amount: d("1"), Recipient: "r",
	})
	require.NoError(t, err)
	_, err = e.transfers.UpdateTransferStatus(ctx, u.ID, tr.ID, models.TransferCompleted, nil)
	require.NoError(t, err)

	e.clock.Advance(40 * timex.Day)

	st, err := e.stats.GetDashboardStats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "102.5", st.TotalBalance.String())
	assert.Equal(t, 3, st.TotalVaults)
	assert.Equal(t, 1, st.ActiveVaults, "the 30 day vault has triggered")
	assert.Equal(t, 1, st.CompletedTransfers)
	assert.Equal(t, 1, st.OFTEnabledTokens)
}

func TestGetDashboardStats_Empty(t *testing.T) {
	e := newEnv(t)
	st, err := e.stats.GetDashboardStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, st.TotalBalance.IsZero())
	assert.Zero(t, st.TotalVaults)
}
