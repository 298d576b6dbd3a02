// Package commands implements the debtbook command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/debtbook/internal/config"
	"github.com/mmynk/debtbook/internal/storage"
	"github.com/mmynk/debtbook/internal/storage/postgres"
	"github.com/mmynk/debtbook/internal/storage/sqlite"
	"github.com/mmynk/debtbook/pkg/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "debtbook",
	Short: "Debtbook - a personal ledger of who owes you what",
	Long: `Debtbook tracks money owed to you. Record what each debtor bought,
record what they paid, and payments are applied to the oldest debts first.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")
}

// setup loads the configuration and installs the default logger.
func setup() (*config.Config, *slog.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	if cfg.DevSecret {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}
	return cfg, logger, nil
}

// openStore opens the configured backend. Both backends migrate on open.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	case "sqlite":
		return sqlite.New(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
