// Package root contains the root command for the application.
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"jmoretti/finledger/internal/config"
	"jmoretti/finledger/internal/container"
	"jmoretti/finledger/internal/logging"
)

// CommonFlags represents the flags shared by multiple commands.
type CommonFlags struct {
	Input   string
	Output  string
	Account string
}

var (
	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.GetLogger()

	// App holds the wired application dependencies. It is built by the
	// root command's PersistentPreRunE and torn down by PersistentPostRun.
	App *container.Container

	// SharedFlags are accessible to all commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "finledger",
		Short: "Import bank and card statements into a categorized ledger.",
		Long: `finledger parses CSV, OFX, and PDF statements from US institutions,
categorizes transactions, and reconciles liability payments against rules.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			app, err := container.New(cmd.Context(), cfg, container.Options{})
			if err != nil {
				return err
			}
			App = app
			Log = app.Logger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if App == nil {
				return
			}
			if err := App.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close application resources")
			}
		},
	}
)

// Init initializes the root command and all shared flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Account, "account", "a", "", "Account identifier")
}
