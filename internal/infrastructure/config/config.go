package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT   JWTConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// JWTConfig carries the two signing secrets and the token lifetimes. The
// secrets must differ: an access token must never verify as a refresh token.
// Lifetimes are human strings ("15m", "7d") parsed by internal/pkg/ttl.
type JWTConfig struct {
	AccessSecret  string `env:"JWT_ACCESS_TOKEN_SECRET"`
	RefreshSecret string `env:"JWT_REFRESH_TOKEN_SECRET"`
	AccessTTL     string `env:"JWT_ACCESS_EXPIRE,  default=15m"`
	RefreshTTL    string `env:"JWT_REFRESH_EXPIRE, default=7d"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("config: JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("config: access and refresh secrets must differ")
	}
	return nil
}
