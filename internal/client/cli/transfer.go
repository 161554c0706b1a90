package cli

import (
	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/spf13/cobra"
)

func newTransferCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move OFT-enabled tokens across chains",
	}
	cmd.AddCommand(newTransferCreateCmd(a), newTransferSettleCmd(a), newTransferListCmd(a))
	return cmd
}

func newTransferCreateCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a cross-chain transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			tokenID, _ := f.GetString("token")
			from, _ := f.GetString("from")
			to, _ := f.GetString("to")
			amountStr, _ := f.GetString("amount")
			recipient, _ := f.GetString("recipient")

			amount, err := parseAmount("amount", amountStr)
			if err != nil {
				return err
			}

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.CreateTransfer(ctx, &api.CreateTransferRequest{
				TokenID:   tokenID,
				FromChain: from,
				ToChain:   to,
				Amount:    amount,
				Recipient: recipient,
			})
			if err != nil {
				return err
			}
			return a.print(resp.Transfer)
		},
	}
	f := cmd.Flags()
	f.String("token", "", "token id")
	f.String("from", "solana", "source chain")
	f.String("to", "", "destination chain")
	f.String("amount", "", "amount to transfer")
	f.String("recipient", "", "recipient address on the destination chain")
	for _, name := range []string{"token", "to", "amount", "recipient"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTransferSettleCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle <transfer-id>",
		Short: "Mark a pending transfer as completed or failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _ := cmd.Flags().GetString("status")
			txHash, _ := cmd.Flags().GetString("tx-hash")

			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.UpdateTransferStatus(ctx, &api.UpdateTransferStatusRequest{
				TransferID: args[0],
				Status:     st,
				TxHash:     txHash,
			})
			if err != nil {
				return err
			}
			return a.print(resp.Transfer)
		},
	}
	cmd.Flags().String("status", "completed", "completed or failed")
	cmd.Flags().String("tx-hash", "", "destination transaction hash")
	return cmd
}

func newTransferListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your transfers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.rpcContext(cmd)
			defer cancel()

			resp, err := a.svc.ListTransfers(ctx, &api.ListTransfersRequest{})
			if err != nil {
				return err
			}
			return a.print(resp.Transfers)
		},
	}
}
