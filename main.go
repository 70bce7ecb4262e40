package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"jmoretti/finledger/cmd/commit"
	"jmoretti/finledger/cmd/export"
	"jmoretti/finledger/cmd/liabilities"
	"jmoretti/finledger/cmd/payments"
	"jmoretti/finledger/cmd/preview"
	"jmoretti/finledger/cmd/root"
	"jmoretti/finledger/cmd/tx"
)

func init() {
	// Load environment variables silently first; nothing is logging yet.
	loadEnvSilently()

	root.Init()

	root.Cmd.AddCommand(preview.Cmd)
	root.Cmd.AddCommand(commit.Cmd)
	root.Cmd.AddCommand(tx.Cmd)
	root.Cmd.AddCommand(liabilities.Cmd)
	root.Cmd.AddCommand(payments.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

// loadEnvSilently loads a .env file without logging anything.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
