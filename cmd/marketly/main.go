package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/marketly-dev/marketly/db"
	"github.com/marketly-dev/marketly/internal/config"
	"github.com/marketly-dev/marketly/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marketly",
	Short: "Marketly - e-commerce catalog, review and cart API",
	Long: `Marketly serves the HTTP API for users, categories, products, reviews and
shopping carts on top of PostgreSQL.

Configuration is read from the environment, after loading an optional .env file.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	registerServeFlags(rootCmd)
}

// bootstrap loads config, installs the default logger and opens the database.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	slog.SetDefault(logger)

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	return cfg, logger, nil
}
