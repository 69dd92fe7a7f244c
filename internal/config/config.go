package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	CatalogStatic = "static"
	CatalogSQLite = "sqlite"
	CatalogYAML   = "yaml"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./dev.db"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	AdminSecret string `env:"ADMIN_SECRET"`

	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"static"`
	CatalogFile   string `env:"CATALOG_FILE"`

	EngineCacheTTL time.Duration `env:"ENGINE_CACHE_TTL" envDefault:"5m"`
	// QuoteCacheTTL of zero keeps quote batches until explicitly cleared.
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"0s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom loads dotenvPath without overriding variables already set and
// parses the environment into a Config.
func LoadFrom(dotenvPath string) (Config, error) {
	// Best-effort: production injects real environment variables.
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.CatalogSource {
	case CatalogStatic, CatalogSQLite:
	case CatalogYAML:
		if cfg.CatalogFile == "" {
			return Config{}, errors.New("CATALOG_FILE is required when CATALOG_SOURCE=yaml")
		}
	default:
		return Config{}, fmt.Errorf("CATALOG_SOURCE %q: want static, sqlite or yaml", cfg.CatalogSource)
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Warnings lists settings that are allowed but probably a mistake.
func (c Config) Warnings() []string {
	var out []string
	if c.AdminSecret == "" {
		out = append(out, "ADMIN_SECRET is not set; admin routes will reject every request")
	}
	if c.EngineCacheTTL < 0 || c.QuoteCacheTTL < 0 {
		out = append(out, "negative cache TTL disables expiry")
	}
	return out
}
