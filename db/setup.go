package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var DB *gorm.DB

// Config returns the gorm settings shared by the server and the tests.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), Config())

	if err != nil {
		return err
	}

	if err = DB.Use(tracing.NewPlugin()); err != nil {
		return fmt.Errorf("install tracing plugin: %w", err)
	}

	sqlDB, err := DB.DB()

	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate creates the application tables plus the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	// One active review per (user, product); deactivated reviews do not block a new one.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_active_user_product ON reviews (user_id, product_id) WHERE is_active",
	).Error; err != nil {
		return fmt.Errorf("create review uniqueness index: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	statements := []string{
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS search_vector tsvector
			GENERATED ALWAYS AS (
				setweight(to_tsvector('english', coalesce(name, '')), 'A') ||
				setweight(to_tsvector('english', coalesce(description, '')), 'B')
			) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_products_search_vector ON products USING GIN (search_vector)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create product search index: %w", err)
		}
	}

	slog.Debug("database migrated", "dialect", db.Dialector.Name())

	return nil
}
