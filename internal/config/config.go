package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

type Config struct {
	Port            string
	Store           string
	DatabaseURL     string
	SQLitePath      string
	LogMode         string
	Migrate         bool
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is fine; the environment may be set by the platform
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		Port:        GetEnv("PORT", "4000"),
		Store:       strings.ToLower(GetEnv("STORE", StorePostgres)),
		DatabaseURL: GetEnv("DATABASE_URL"),
		SQLitePath:  GetEnv("SQLITE_PATH", "var/media.db"),
		LogMode:     strings.ToLower(GetEnv("LOG_MODE", "production")),
	}

	migrate, err := strconv.ParseBool(GetEnv("MIGRATE", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid MIGRATE: %w", err)
	}
	cfg.Migrate = migrate

	secs, err := strconv.Atoi(GetEnv("SHUTDOWN_TIMEOUT", "5"))
	if err != nil || secs < 0 {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", GetEnv("SHUTDOWN_TIMEOUT"))
	}
	cfg.ShutdownTimeout = time.Duration(secs) * time.Second

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, ErrMissingDatabaseURL
		}
	case StoreSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func (c Config) Addr() string { return ":" + c.Port }

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
