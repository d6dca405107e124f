package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// .env is optional
	_ = godotenv.Load()
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	minProductionSecretLen = 16
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Sale     SaleConfig
	Log      LogConfig
}

type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"seckill"`
	Environment string `envconfig:"APP_ENV" default:"development"`
}

type ServerConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr        string        `envconfig:"GRPC_ADDR" default:":50051"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	// RateLimit is requests per second per client IP on the sale endpoints, 0 disables it.
	RateLimit int `envconfig:"RATE_LIMIT" default:"100"`
}

type DatabaseConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"mysql"`
	DSN             string        `envconfig:"DB_DSN" default:"root:root@tcp(localhost:3306)/seckill?parseTime=true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type CacheConfig struct {
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize      int           `envconfig:"REDIS_POOL_SIZE" default:"100"`
	ItemTTL       time.Duration `envconfig:"CACHE_ITEM_TTL" default:"1m"`
}

type SaleConfig struct {
	TokenSecret string `envconfig:"TOKEN_SECRET" required:"true"`
	QueueSize   int    `envconfig:"COMMIT_QUEUE_SIZE" default:"10000"`
	WorkerCount int    `envconfig:"WORKER_COUNT" default:"4"`

	// Seed item, created at startup when SeedItemName is set.
	SeedItemName   string        `envconfig:"SEED_ITEM_NAME" default:""`
	SeedItemStock  int64         `envconfig:"SEED_ITEM_STOCK" default:"100"`
	SeedItemWindow time.Duration `envconfig:"SEED_ITEM_WINDOW" default:"1h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == EnvProduction
}

// Validate checks settings envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Sale.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET must not be empty")
	}
	if c.App.IsProduction() && len(c.Sale.TokenSecret) < minProductionSecretLen {
		return fmt.Errorf("TOKEN_SECRET must be at least %d bytes in production (got %d)",
			minProductionSecretLen, len(c.Sale.TokenSecret))
	}

	if c.Sale.QueueSize < 0 || c.Sale.WorkerCount < 0 {
		return fmt.Errorf("COMMIT_QUEUE_SIZE and WORKER_COUNT must not be negative")
	}

	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
