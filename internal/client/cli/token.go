package cli

import (
	"fmt"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage token holdings",
	}
	cmd.AddCommand(newTokenCreateCmd(a), newTokenBalanceCmd(a), newTokenListCmd(a), newTokenOFTCmd(a))
	return cmd
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func newTokenCreateCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a token held by the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			mint, _ := f.GetString("mint")
			name, _ := f.GetString("name")
			symbol, _ := f.GetString("symbol")
			decimals, _ := f.GetInt("decimals")
			balance, _ := f.GetString("balance")

			amount, err := parseAmount("balance", balance)
			if err != nil {
				return err
			}

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.CreateToken(ctx, &api.CreateTokenRequest{
				MintAddress:    mint,
				Name:           name,
				Symbol:         symbol,
				Decimals:       decimals,
				InitialBalance: amount,
			})
			if err != nil {
				return err
			}
			return a.print(resp.Token)
		},
	}
	f := cmd.Flags()
	f.String("mint", "", "mint address (unique)")
	f.String("name", "", "token name")
	f.String("symbol", "", "ticker symbol")
	f.Int("decimals", 9, "token decimals")
	f.String("balance", "0", "initial balance")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newTokenBalanceCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <token-id> <balance>",
		Short: "Set the balance of a token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("balance", args[1])
			if err != nil {
				return err
			}

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.UpdateTokenBalance(ctx, &api.UpdateTokenBalanceRequest{TokenID: args[0], Balance: amount})
			if err != nil {
				return err
			}
			return a.print(resp.Token)
		},
	}
}

func newTokenListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tokens of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.ListTokens(ctx, &api.ListTokensRequest{})
			if err != nil {
				return err
			}
			return a.print(resp.Tokens)
		},
	}
}

func newTokenOFTCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oft <token-id>",
		Short: "Enable omnichain (OFT) transfers for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chains, _ := cmd.Flags().GetStringSlice("chains")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.RegisterOFT(ctx, &api.RegisterOFTRequest{TokenID: args[0], Chains: chains})
			if err != nil {
				return err
			}
			return a.print(resp.Token)
		},
	}
	cmd.Flags().StringSlice("chains", nil, "supported chains (default: every chain known to the bridge)")
	return cmd
}
