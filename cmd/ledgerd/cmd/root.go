package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "Double-entry ledger posting and period-control engine",
	Long: `Ledgerd manages a double-entry general ledger backed by PostgreSQL.

It provides tools for:
  - Applying database schema migrations
  - Verifying ledger integrity against stored account balances`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
}
