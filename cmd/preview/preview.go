// Package preview handles the statement preview command.
package preview

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
)

// Cmd represents the preview command.
var Cmd = &cobra.Command{
	Use:   "preview",
	Short: "Parse and categorize a statement without committing it",
	Long: `Parse a CSV, OFX, or PDF statement, flag duplicates against the ledger,
and categorize every transaction. Nothing is persisted.`,
	RunE: previewFunc,
}

func previewFunc(cmd *cobra.Command, args []string) error {
	if root.SharedFlags.Input == "" {
		return fmt.Errorf("--input is required")
	}
	data, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	result, err := root.App.Pipeline().Preview(cmd.Context(), data)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("statement could not be parsed: %s", result.Error)
	}

	root.Log.Info("Statement preview complete")
	root.Log.Infof("Institution: %s (%s)", result.Institution, result.AccountType)
	root.Log.Infof("Transactions: %d (%d duplicates)", result.TransactionCount, result.DuplicateCount)

	return writeJSON(root.SharedFlags.Output, result)
}

func writeJSON(path string, v any) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
