package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-crypto-backend/internal/config"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cfg.DB)
	},
}

func runMigrate(dbCfg config.DBConfig) error {
	db, err := repo.Open(dbCfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("driver", dbCfg.Driver).Msg("migrations applied")
	return nil
}
