package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendJSON   = "json"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port            string        `env:"PORT,             default=3000"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	StaticDir       string        `env:"STATIC_DIR,       default=public"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Backend    string `env:"STORE_BACKEND, default=json"`
	DataPath   string `env:"DATA_PATH,     default=data/database.json"`
	SQLitePath string `env:"SQLITE_PATH,   default=data/library.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=library_tracker"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendJSON, BackendMongo, BackendSQLite:
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	return &cfg, nil
}
