package cli

import (
	"errors"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/client/client"
	"github.com/spf13/cobra"
)

var errNoSession = errors.New("not logged in: run 'vaultctl user login --wallet <address>' first")

func newUserCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register, log in and inspect users",
	}
	cmd.AddCommand(newUserRegisterCmd(a), newUserLoginCmd(a), newUserLogoutCmd(a), newUserShowCmd(a))
	return cmd
}

func newUserRegisterCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a wallet and open a session for it",
		Long: `Register creates the user for --wallet, or returns the existing one when the
wallet is already registered, and stores the issued session locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			wallet, _ := cmd.Flags().GetString("wallet")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.CreateUser(ctx, &api.CreateUserRequest{Username: username, WalletAddress: wallet})
			if err != nil {
				return err
			}
			tokens := client.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
			if err := a.session.Save(ctx, resp.User.WalletAddress, tokens); err != nil {
				return err
			}
			return a.print(resp.User)
		},
	}
	cmd.Flags().String("username", "", "display name (unique)")
	cmd.Flags().String("wallet", "", "wallet address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}

func newUserLoginCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session for a registered wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, _ := cmd.Flags().GetString("wallet")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.Login(ctx, &api.LoginRequest{WalletAddress: wallet})
			if err != nil {
				return err
			}
			tokens := client.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
			if err := a.session.Save(ctx, wallet, tokens); err != nil {
				return err
			}
			return a.print(map[string]string{"wallet": wallet, "status": "logged in"})
		},
	}
	cmd.Flags().String("wallet", "", "wallet address")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}

func newUserLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.Clear(cmd.Context())
		},
	}
}

func newUserShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [wallet]",
		Short: "Show a user by wallet (defaults to the session wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			wallet, err := a.walletArg(cmd, args)
			if err != nil {
				return err
			}
			resp, err := a.svc.GetUserByWallet(ctx, &api.GetUserByWalletRequest{WalletAddress: wallet})
			if err != nil {
				return err
			}
			return a.print(resp.User)
		},
	}
}

// walletArg returns args[0] when given, otherwise the session wallet.
func (a *App) walletArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	w, err := a.session.Wallet(cmd.Context())
	if err != nil {
		return "", err
	}
	if w == "" {
		return "", errNoSession
	}
	return w, nil
}
