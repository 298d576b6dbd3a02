package commands

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			logger.Error("failed to open storage", "driver", cfg.DBDriver, "error", err)
			return err
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			logger.Error("migration failed", "error", err)
			return err
		}
		logger.Info("schema up to date", "driver", cfg.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
