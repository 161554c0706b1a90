package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/netx"
	"github.com/spf13/cobra"
)

func newVaultCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Create, maintain and claim inheritance vaults",
		Long: `A vault is created as a draft, filled from a YAML definition file listing
beneficiaries and asset allocations, and committed. The owner keeps it active
with "vault ping"; once the inactivity period elapses beneficiaries can claim.`,
	}
	cmd.AddCommand(
		newVaultDraftCmd(a),
		newVaultContentsCmd(a, "validate", "Check a vault definition without committing it"),
		newVaultContentsCmd(a, "commit", "Commit a vault definition and activate the vault"),
		newVaultIDCmd(a, "ping", "Record owner activity, restarting the inactivity clock", func(cmd *cobra.Command, id string) (any, error) {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()
			if _, err := a.svc.RecordActivity(ctx, &api.VaultRequest{VaultID: id}); err != nil {
				return nil, err
			}
			return map[string]string{"vault_id": id, "status": "activity recorded"}, nil
		}),
		newVaultIDCmd(a, "status", "Show whether a vault can be claimed", func(cmd *cobra.Command, id string) (any, error) {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()
			return a.svc.GetClaimableStatus(ctx, &api.VaultRequest{VaultID: id})
		}),
		newVaultIDCmd(a, "show", "Show a vault", func(cmd *cobra.Command, id string) (any, error) {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()
			resp, err := a.svc.GetVault(ctx, &api.VaultRequest{VaultID: id})
			if err != nil {
				return nil, err
			}
			return resp.Vault, nil
		}),
		newVaultIDCmd(a, "reset", "Reset a triggered vault back to active", func(cmd *cobra.Command, id string) (any, error) {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()
			resp, err := a.svc.ResetVault(ctx, &api.VaultRequest{VaultID: id})
			if err != nil {
				return nil, err
			}
			return resp.Vault, nil
		}),
		newVaultIDCmd(a, "claim", "Claim your share of a vault as a beneficiary", func(cmd *cobra.Command, id string) (any, error) {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()
			return a.svc.ClaimVault(ctx, &api.VaultRequest{VaultID: id})
		}),
		newVaultReceiptCmd(a),
		newVaultListCmd(a),
		newVaultValueCmd(a),
	)
	return cmd
}

func newVaultIDCmd(a *App, use, short string, run func(cmd *cobra.Command, id string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <vault-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := run(cmd, args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
}

func newVaultDraftCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Create an empty vault draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			title, _ := f.GetString("title")
			description, _ := f.GetString("description")
			period, _ := f.GetInt("period")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.CreateVaultDraft(ctx, &api.CreateVaultDraftRequest{
				Title:            title,
				Description:      description,
				InactivityPeriod: period,
			})
			if err != nil {
				return err
			}
			return a.print(resp.Vault)
		},
	}
	f := cmd.Flags()
	f.String("title", "", "vault title")
	f.String("description", "", "vault description")
	f.Int("period", 0, "inactivity period in days")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newVaultContentsCmd(a *App, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <vault-id> -f <definition.yaml>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			req, err := loadVaultDefinition(file, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			if use == "validate" {
				resp, err := a.svc.ValidateVaultDraft(ctx, req)
				if err != nil {
					return err
				}
				return a.print(resp)
			}
			resp, err := a.svc.CommitVault(ctx, req)
			if err != nil {
				return err
			}
			return a.print(resp.Vault)
		},
	}
	cmd.Flags().StringP("file", "f", "", "vault definition YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newVaultListCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your vaults, or with --beneficiary the vaults naming you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asBeneficiary, _ := cmd.Flags().GetBool("beneficiary")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			list := a.svc.ListVaults
			if asBeneficiary {
				list = a.svc.ListBeneficiaryVaults
			}
			resp, err := list(ctx, &api.ListVaultsRequest{})
			if err != nil {
				return err
			}
			return a.print(resp.Vaults)
		},
	}
	cmd.Flags().Bool("beneficiary", false, "list vaults where the session wallet is a beneficiary")
	return cmd
}

func newVaultValueCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value <vault-id>",
		Short: "Show the USD value claimable from a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			beneficiary, _ := cmd.Flags().GetString("beneficiary")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.GetClaimableValue(ctx, &api.GetClaimableValueRequest{VaultID: args[0], Beneficiary: beneficiary})
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().String("beneficiary", "", "limit to this beneficiary address's share")
	return cmd
}

func newVaultReceiptCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt <vault-id>",
		Short: "Get, or with --output download, your archived claim receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.GetReceiptURL(ctx, &api.VaultRequest{VaultID: args[0]})
			if err != nil {
				return err
			}
			if output == "" {
				return a.print(resp)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := netx.DownloadPresignedURL(ctx, resp.URL, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("download receipt: %w", err)
			}
			return a.print(map[string]any{"file": output, "bytes": n})
		},
	}
	cmd.Flags().StringP("output", "o", "", "save the receipt to this file")
	return cmd
}
