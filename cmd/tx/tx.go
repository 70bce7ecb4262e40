// Package tx handles post-import transaction edit commands.
package tx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
	"jmoretti/finledger/internal/pipeline"
)

// Cmd represents the tx command group.
var Cmd = &cobra.Command{
	Use:   "tx",
	Short: "Edit or delete imported transactions",
	Long: `Edit or delete transactions already committed to the ledger. Amount
edits reverse and re-match any applied liability payment; category edits
teach the categorizer.`,
}

var (
	updateAmount      string
	updateCategory    string
	updateSubcategory string
	updateTransfer    bool
)

var updateCmd = &cobra.Command{
	Use:   "update <transaction-id> [transaction-id...]",
	Short: "Update one or more transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update := pipeline.TransactionUpdate{}
		if cmd.Flags().Changed("amount") {
			amount, err := decimal.NewFromString(updateAmount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}
			update.Amount = &amount
		}
		if cmd.Flags().Changed("category") {
			update.Category = &updateCategory
		}
		if cmd.Flags().Changed("subcategory") {
			update.Subcategory = &updateSubcategory
		}
		if cmd.Flags().Changed("transfer") {
			update.IsTransfer = &updateTransfer
		}

		if len(args) == 1 {
			_, err := root.App.Pipeline().UpdateTransaction(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			root.Log.Infof("Updated transaction %s", args[0])
			return nil
		}
		return report(root.App.Pipeline().BulkUpdate(cmd.Context(), args, update))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <transaction-id> [transaction-id...]",
	Short: "Delete one or more transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := root.App.Pipeline().DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			root.Log.Infof("Deleted transaction %s", args[0])
			return nil
		}
		return report(root.App.Pipeline().BulkDelete(cmd.Context(), args))
	},
}

// report prints per-item outcomes and fails the command only when every
// item failed, mirroring the per-item isolation of bulk operations.
func report(outcomes []pipeline.ItemOutcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Success {
			fmt.Printf("%s  ok\n", o.ID)
			continue
		}
		failed++
		fmt.Printf("%s  error: %s\n", o.ID, o.Error)
	}
	if failed == len(outcomes) && failed > 0 {
		return fmt.Errorf("all %d operations failed", failed)
	}
	return nil
}

func init() {
	updateCmd.Flags().StringVar(&updateAmount, "amount", "", "New amount (outflows negative)")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&updateSubcategory, "subcategory", "", "New subcategory")
	updateCmd.Flags().BoolVar(&updateTransfer, "transfer", false, "Mark as transfer")

	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}
