package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/simaogato/ledger-backend/internal/config"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations for the configured storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, err := openStorage(ctx, cfg.Storage, true)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}

			if cfg.Storage.Driver == config.DriverMemory {
				log.Println("memory storage has no schema, nothing to migrate")
				return nil
			}
			log.Printf("%s schema is up to date", cfg.Storage.Driver)
			return nil
		},
	}
}
