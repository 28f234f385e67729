package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret         string `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTAlgorithm      string `envconfig:"JWT_ALGORITHM" default:"HS256"`
	AccessExpireMin   int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`
	RefreshExpireDays int    `envconfig:"REFRESH_TOKEN_EXPIRE_DAYS" default:"7"`

	Port        string `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"dev"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"marketly"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`

	ClientURL      string   `envconfig:"CLIENT_URL"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	Media MediaConfig

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type MediaConfig struct {
	Backend string `envconfig:"MEDIA_BACKEND" default:"disk"` // disk or minio
	Root    string `envconfig:"MEDIA_ROOT" default:"media"`

	MinIOEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinIOAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinIOBucket    string `envconfig:"MINIO_BUCKET" default:"marketly-media"`
	MinIOUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinIOPublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if c.AccessExpireMin <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessExpireMin)
	}
	if c.RefreshExpireDays <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRE_DAYS must be positive, got %d", c.RefreshExpireDays)
	}

	switch c.Media.Backend {
	case "disk":
	case "minio":
		if c.Media.MinIOEndpoint == "" {
			return errors.New("MINIO_ENDPOINT is required when MEDIA_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.Media.Backend)
	}

	return nil
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessExpireMin) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpireDays) * 24 * time.Hour
}

// Origins merges the development defaults with CLIENT_URL and ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}

	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
