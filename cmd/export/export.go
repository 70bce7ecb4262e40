// Package export handles the ledger export command.
package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
	exportcsv "jmoretti/finledger/internal/export"
)

// Cmd represents the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger transactions to CSV",
	Long:  `Export an account's transactions (or the whole ledger) as CSV.`,
	RunE:  exportFunc,
}

func exportFunc(cmd *cobra.Command, args []string) error {
	txs, err := root.App.Store().ListTransactions(cmd.Context(), root.SharedFlags.Account)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		root.Log.Warn("No transactions to export")
	}

	if root.SharedFlags.Output == "" {
		if err := exportcsv.WriteTransactions(os.Stdout, txs); err != nil {
			return err
		}
		return nil
	}
	if err := exportcsv.WriteTransactionsFile(root.SharedFlags.Output, txs); err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s\n", len(txs), root.SharedFlags.Output)
	return nil
}
