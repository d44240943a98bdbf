package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	IsProduction   bool
	EnableDBCheck  bool
	LockTimeout    time.Duration
	MigrationsPath string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is merged in first when present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOCK_TIMEOUT", "3s")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.AutomaticEnv()

	dbURL := v.GetString("PGSQL_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("PGSQL_URL environment variable not set")
	}

	lockTimeout := v.GetDuration("LOCK_TIMEOUT")
	if lockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be a positive duration, got %q", v.GetString("LOCK_TIMEOUT"))
	}

	return &Config{
		DatabaseURL:    dbURL,
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		LockTimeout:    lockTimeout,
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
	}, nil
}
