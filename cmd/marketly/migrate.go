package main

import (
	"log/slog"

	"github.com/marketly-dev/marketly/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := bootstrap(); err != nil {
			return err
		}

		if err := db.MigrateDatabase(); err != nil {
			return err
		}

		slog.Info("database schema is up to date")
		return nil
	},
}
