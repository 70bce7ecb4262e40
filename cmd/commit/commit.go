// Package commit handles the statement import command.
package commit

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
)

var includeDuplicates bool

// Cmd represents the commit command.
var Cmd = &cobra.Command{
	Use:   "commit",
	Short: "Import a statement into the ledger",
	Long: `Parse, categorize, and persist a statement for an account, then run
liability payment matching for every inserted transaction.`,
	RunE: commitFunc,
}

func init() {
	Cmd.Flags().BoolVar(&includeDuplicates, "include-duplicates", false,
		"Import transactions flagged as duplicates too")
}

func commitFunc(cmd *cobra.Command, args []string) error {
	if root.SharedFlags.Input == "" {
		return fmt.Errorf("--input is required")
	}
	if root.SharedFlags.Account == "" {
		return fmt.Errorf("--account is required")
	}
	data, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	pipe := root.App.Pipeline()
	preview, err := pipe.Preview(cmd.Context(), data)
	if err != nil {
		return err
	}
	if !preview.Success {
		return fmt.Errorf("statement could not be parsed: %s", preview.Error)
	}

	txs := preview.Transactions
	if includeDuplicates {
		for i := range txs {
			txs[i].IncludeDuplicate = true
		}
	}

	result, err := pipe.Commit(cmd.Context(), root.SharedFlags.Account, txs)
	if err != nil {
		return err
	}

	root.Log.Infof("Imported %d transactions into account %s", result.Inserted, result.AccountID)
	if result.NewPayments > 0 {
		root.Log.Infof("Matched %d liability payments", result.NewPayments)
	}
	skipped := preview.TransactionCount - result.Inserted
	if skipped > 0 {
		root.Log.Infof("Skipped %d duplicate transactions", skipped)
	}
	return nil
}
