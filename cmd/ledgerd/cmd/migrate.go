package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/finboard/ledger-engine/pkg/config"
	"github.com/spf13/cobra"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return runMigrations(cfg)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrations(cfg *config.Config) error {
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration database connection: %w", err)
	}
	defer func() {
		if err := migrationDB.Close(); err != nil {
			slog.Warn("failed to close migration database connection", slog.String("error", err.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verErr := m.Version()
	if verErr != nil && verErr != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", verErr)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty migration state at version %d", version)
	}

	if err == migrate.ErrNoChange {
		slog.Info("no new migrations to apply", slog.Uint64("version", uint64(version)))
	} else {
		slog.Info("database migrations applied", slog.Uint64("version", uint64(version)))
	}
	return nil
}
