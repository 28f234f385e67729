package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/db"
	"github.com/marketly-dev/marketly/internal/auth"
	"github.com/marketly-dev/marketly/internal/config"
	"github.com/marketly-dev/marketly/internal/obs"
	"github.com/marketly-dev/marketly/internal/router"
	"github.com/marketly-dev/marketly/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	registerServeFlags(serveCmd)
}

func registerServeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Migrate the database schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	if autoMigrate {
		if err := db.MigrateDatabase(); err != nil {
			return err
		}
	}

	if err := auth.Configure(auth.TokenConfig{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}); err != nil {
		return fmt.Errorf("configure tokens: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}

	media, mediaRoot, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		return err
	}

	if cfg.Environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.NewRouter(router.Options{
		Logger:      logger,
		ServiceName: cfg.ServiceName,
		Origins:     cfg.Origins(),
		Media:       media,
		MediaRoot:   mediaRoot,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-gctx.Done():
			slog.Info("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// newMediaStore returns the configured store and, for the disk backend, the directory
// to serve under /media.
func newMediaStore(ctx context.Context, cfg config.MediaConfig) (storage.Store, string, error) {
	switch cfg.Backend {
	case "minio":
		store, err := storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := storage.NewDiskStore(cfg.Root, "/media")
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Root, nil
	}
}
