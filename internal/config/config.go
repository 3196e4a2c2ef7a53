// Package config loads server settings from an optional .env file and BILLBUDDY_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mmynk/billbuddy/internal/money"
)

const envPrefix = "BILLBUDDY"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete server configuration.
type Config struct {
	Env        string
	Port       int
	StaticPath string
	LogLevel   string
	Currency   string

	DB         DB
	Auth       Auth
	Redis      Redis
	Receipt    Receipt
	Settlement Settlement
	Split      Split
}

type DB struct {
	Driver string
	Path   string
	URL    string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Redis is optional. With an empty Addr, events only reach watchers on this process.
type Redis struct {
	Addr    string
	Channel string
}

// Receipt is optional. Without an API key, ScanReceipt reports "scan failed".
type Receipt struct {
	GeminiAPIKey string
	Model        string
}

type Settlement struct {
	// NetThreshold hides pairwise debts whose net amount is at or below it.
	NetThreshold int64
	// PlanFloor stops the settlement planner once every remaining balance is within it.
	PlanFloor int64
}

type Split struct {
	MaxRetries int
	RetryBase  time.Duration
}

// NetThresholdDecimal returns the netting threshold as an exact amount.
func (s Settlement) NetThresholdDecimal() decimal.Decimal {
	return money.FromUnits(s.NetThreshold)
}

// PlanFloorDecimal returns the planner floor as an exact amount.
func (s Settlement) PlanFloorDecimal() decimal.Decimal {
	return money.FromUnits(s.PlanFloor)
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./static")
	v.SetDefault("log_level", "info")
	v.SetDefault("currency", money.DefaultCurrency)
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "./data/billbuddy.db")
	v.SetDefault("db.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "billbuddy:events")
	v.SetDefault("receipt.gemini_api_key", "")
	v.SetDefault("receipt.model", "gemini-2.5-flash")
	v.SetDefault("settlement.net_threshold", 1)
	v.SetDefault("settlement.plan_floor", 10)
	v.SetDefault("split.max_retries", 5)
	v.SetDefault("split.retry_base", 20*time.Millisecond)
}

// devSecret signs tokens when no secret is configured in development.
const devSecret = "billbuddy-development-secret"

// Load reads .env (if present) and the environment. envFiles overrides the default ".env".
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Existing environment variables win over .env entries.
		if err := godotenv.Load(f); err != nil {
			slog.Debug("No env file loaded", "file", f, "error", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Env:        strings.ToLower(v.GetString("env")),
		Port:       v.GetInt("port"),
		StaticPath: v.GetString("static_path"),
		LogLevel:   v.GetString("log_level"),
		Currency:   money.NormalizeCurrency(v.GetString("currency")),
		DB: DB{
			Driver: strings.ToLower(v.GetString("db.driver")),
			Path:   v.GetString("db.path"),
			URL:    v.GetString("db.url"),
		},
		Auth: Auth{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Redis: Redis{
			Addr:    v.GetString("redis.addr"),
			Channel: v.GetString("redis.channel"),
		},
		Receipt: Receipt{
			GeminiAPIKey: v.GetString("receipt.gemini_api_key"),
			Model:        v.GetString("receipt.model"),
		},
		Settlement: Settlement{
			NetThreshold: v.GetInt64("settlement.net_threshold"),
			PlanFloor:    v.GetInt64("settlement.plan_floor"),
		},
		Split: Split{
			MaxRetries: v.GetInt("split.max_retries"),
			RetryBase:  v.GetDuration("split.retry_base"),
		},
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		slog.Warn("Using development JWT secret; set BILLBUDDY_AUTH_JWT_SECRET in production")
		cfg.Auth.JWTSecret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DB.URL == "" {
			errs = append(errs, errors.New("db.url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db.driver %q", c.DB.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Settlement.NetThreshold < 0 {
		errs = append(errs, errors.New("settlement.net_threshold must not be negative"))
	}
	if c.Split.MaxRetries < 0 {
		errs = append(errs, errors.New("split.max_retries must not be negative"))
	}
	if c.Split.RetryBase <= 0 {
		errs = append(errs, errors.New("split.retry_base must be positive"))
	}
	return errors.Join(errs...)
}
