// Package payments handles liability payment commands.
package payments

import (
	"fmt"

	"github.com/spf13/cobra"

	"jmoretti/finledger/cmd/root"
)

// Cmd represents the payments command group.
var Cmd = &cobra.Command{
	Use:   "payments",
	Short: "Manage liability payment matches",
	Long: `Apply, skip, or reverse payment matches produced by the liability
rule matcher, and list a liability's payment history.`,
}

var applyCmd = &cobra.Command{
	Use:   "apply <payment-id>",
	Short: "Apply a pending payment, reducing the liability balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App.Pipeline().ApplyPayment(cmd.Context(), args[0]); err != nil {
			return err
		}
		root.Log.Infof("Payment %s applied", args[0])
		return nil
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <payment-id>",
	Short: "Skip a pending payment without touching the balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App.Pipeline().SkipPayment(cmd.Context(), args[0]); err != nil {
			return err
		}
		root.Log.Infof("Payment %s skipped", args[0])
		return nil
	},
}

var reverseCmd = &cobra.Command{
	Use:   "reverse <payment-id>",
	Short: "Reverse an applied payment, restoring the liability balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App.Pipeline().ReversePayment(cmd.Context(), args[0]); err != nil {
			return err
		}
		root.Log.Infof("Payment %s reversed", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <liability-id>",
	Short: "List a liability's payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st := root.App.Store()
		liab, err := st.GetLiability(ctx, args[0])
		if err != nil {
			return err
		}
		payments, err := st.ListPayments(ctx, liab.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  balance %s\n", liab.Name, liab.Balance.StringFixed(2))
		for _, p := range payments {
			fmt.Printf("%s  %-8s  %s  tx=%s\n",
				p.ID, p.Status, p.Amount.StringFixed(2), p.TransactionID)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(applyCmd)
	Cmd.AddCommand(skipCmd)
	Cmd.AddCommand(reverseCmd)
	Cmd.AddCommand(listCmd)
}
