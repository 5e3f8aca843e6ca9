// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string
	LogLevel    string
	LogFile     string

	Driver      Driver
	SQLitePath  string
	PostgresDSN string
	SeedFile    string

	Duplicates        appOrder.DuplicatePolicy
	AllowEmpty        bool
	LowStockThreshold int

	// OTLPEndpoint disables span export when empty.
	OTLPEndpoint string
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv and reports every invalid value at once.
func LoadFrom(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		ServiceName:  get("SERVICE_NAME", "minishop-orders"),
		Env:          get("ENV", "dev"),
		HTTPAddr:     get("HTTP_ADDR", ":8080"),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFile:      get("LOG_FILE", ""),
		Driver:       Driver(strings.ToLower(get("STORAGE_DRIVER", string(DriverMemory)))),
		SQLitePath:   get("SQLITE_PATH", "./data/orders.db"),
		PostgresDSN:  get("POSTGRES_DSN", ""),
		SeedFile:     get("SEED_FILE", ""),
		OTLPEndpoint: get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var errs []error

	switch cfg.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", cfg.Driver))
	}

	policy, err := appOrder.ParseDuplicatePolicy(getenv("ORDER_DUPLICATE_POLICY"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ORDER_DUPLICATE_POLICY: %w", err))
	}
	cfg.Duplicates = policy

	if v := get("ORDER_ALLOW_EMPTY", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ORDER_ALLOW_EMPTY: %w", err))
		}
		cfg.AllowEmpty = b
	}

	cfg.LowStockThreshold = -1
	if v := get("LOW_STOCK_THRESHOLD", ""); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err))
		case n < 0:
			errs = append(errs, fmt.Errorf("LOW_STOCK_THRESHOLD: must be zero or greater, got %d", n))
		default:
			cfg.LowStockThreshold = n
		}
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}
