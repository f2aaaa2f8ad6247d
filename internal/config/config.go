package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Hash     HashConfig
	Log      LogConfig
	Store    StoreConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// AuthConfig has no defaults. A process without a signing secret or token
// lifetime must not start.
type AuthConfig struct {
	SecretKey               string `env:"SECRET_KEY,required,notEmpty"`
	AccessTokenExpireMinute int    `env:"ACCESS_TOKEN_EXPIRE,required"`
}

type HashConfig struct {
	Time        uint32 `env:"HASH_TIME" envDefault:"3"`
	MemoryKiB   uint32 `env:"HASH_MEMORY_KIB" envDefault:"65536"`
	Threads     uint8  `env:"HASH_THREADS" envDefault:"4"`
	Concurrency int    `env:"HASH_CONCURRENCY" envDefault:"0"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" envDefault:"localhost"`
	Port        string `env:"PGPORT" envDefault:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" envDefault:"disable"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return errors.New("config: SECRET_KEY is required")
	}
	if c.Auth.AccessTokenExpireMinute <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE must be a positive number of minutes (got %d)", c.Auth.AccessTokenExpireMinute)
	}
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Hash.Time == 0 || c.Hash.MemoryKiB == 0 || c.Hash.Threads == 0 {
		return errors.New("config: HASH_TIME, HASH_MEMORY_KIB and HASH_THREADS must be positive")
	}
	if c.Hash.Concurrency < 0 {
		return fmt.Errorf("config: HASH_CONCURRENCY must not be negative (got %d)", c.Hash.Concurrency)
	}
	return nil
}
