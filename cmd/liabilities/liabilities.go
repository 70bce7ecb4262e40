// Package liabilities handles liability and payment rule management commands.
package liabilities

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

// Cmd represents the liabilities command group.
var Cmd = &cobra.Command{
	Use:   "liabilities",
	Short: "Manage tracked liabilities and their payment rules",
}

var addBalance string

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a liability with a starting balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		balance, err := decimal.NewFromString(addBalance)
		if err != nil {
			return fmt.Errorf("invalid --balance: %w", err)
		}
		liab, err := root.App.Store().CreateLiability(cmd.Context(), args[0], balance)
		if err != nil {
			return err
		}
		root.Log.Infof("Created liability %s (%s) with balance %s",
			liab.Name, liab.ID, liab.Balance.StringFixed(2))
		return nil
	},
}

var (
	ruleMerchant    string
	ruleDescription string
	ruleAccountID   string
	ruleAutoApply   bool
)

var ruleCmd = &cobra.Command{
	Use:   "rule <liability-id>",
	Short: "Add a payment matching rule to a liability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		liab, err := root.App.Store().GetLiability(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rule := models.LiabilityPaymentRule{
			LiabilityID:      liab.ID,
			MatchMerchant:    ruleMerchant,
			MatchDescription: ruleDescription,
			MatchAccountID:   ruleAccountID,
			AutoApply:        ruleAutoApply,
			IsActive:         true,
		}
		if !rule.HasMatchField() {
			return &parsererror.InvalidFormatError{
				Reason: "a rule needs at least one of --merchant, --description, --match-account",
			}
		}
		created, err := root.App.Store().CreateRule(cmd.Context(), rule)
		if err != nil {
			return err
		}
		root.Log.Infof("Created rule %s for liability %s", created.ID, liab.Name)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addBalance, "balance", "0", "Starting balance")

	ruleCmd.Flags().StringVar(&ruleMerchant, "merchant", "", "Match on merchant (substring, case-insensitive)")
	ruleCmd.Flags().StringVar(&ruleDescription, "description", "", "Match on description (substring, case-insensitive)")
	ruleCmd.Flags().StringVar(&ruleAccountID, "match-account", "", "Match on source account id (exact)")
	ruleCmd.Flags().BoolVar(&ruleAutoApply, "auto-apply", false, "Apply matched payments immediately")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(ruleCmd)
}
