package cmd

import (
	"fmt"
	"log/slog"

	"github.com/finboard/ledger-engine/internal/core/services"
	"github.com/finboard/ledger-engine/internal/platform/logging"
	"github.com/finboard/ledger-engine/internal/repositories/database/pgsql"
	"github.com/finboard/ledger-engine/pkg/config"
	"github.com/finboard/ledger-engine/pkg/database"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify ledger integrity against stored account balances",
	Long: `Verify recomputes every account balance from ledger history and checks
the per-period debit/credit identity. The command exits non-zero when any
violation is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := logging.ContextWithLogger(cmd.Context(), slog.Default())

		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return fmt.Errorf("failed to initialize database pool: %w", err)
		}
		defer database.ClosePgxPool(pool)

		repos := pgsql.NewRepositoryProvider(pool, cfg.LockTimeout)
		container := services.NewServiceContainer(repos)

		findings, err := container.Reporting.VerifyLedgerIntegrity(ctx)
		if err != nil {
			return fmt.Errorf("ledger verification failed: %w", err)
		}
		if len(findings) == 0 {
			slog.Info("ledger integrity verified, no violations found")
			return nil
		}

		for _, f := range findings {
			slog.Error("ledger integrity violation",
				slog.String("kind", f.Kind),
				slog.String("accountID", f.AccountID),
				slog.String("periodID", f.PeriodID),
				slog.String("expected", f.Expected.String()),
				slog.String("actual", f.Actual.String()),
				slog.String("detail", f.Detail),
			)
		}
		return fmt.Errorf("ledger integrity check found %d violation(s)", len(findings))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
