package cli

import (
	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/spf13/cobra"
)

func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "Command-line client for the omnivault inheritance vault service",
		Long: `vaultctl manages tokens, inheritance vaults and cross-chain transfers
on an omnivault server. Register or log in with a wallet first; the session
is remembered in the local state database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "path of the vaultctl.yaml config file")
	pf.String("server", "", "omnivault gRPC address (host:port)")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("state", "", "path of the local state database")

	root.AddCommand(
		newPingCmd(a),
		newUserCmd(a),
		newTokenCmd(a),
		newVaultCmd(a),
		newTransferCmd(a),
		newStatsCmd(a),
	)
	return root
}

func newPingCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.Ping(ctx, &api.PingRequest{})
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
}

func newStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals for the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.GetDashboardStats(ctx, &api.DashboardStatsRequest{})
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
}
