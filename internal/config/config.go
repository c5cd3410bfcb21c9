package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the scripture-assistant service.
type Config struct {
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	Server     ServerConfig
	Store      StoreConfig
	Completion CompletionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port           string `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	AccessPassword string `envconfig:"ACCESS_PASSWORD" required:"true"`
}

// StoreConfig selects and configures the durable slot store.
type StoreConfig struct {
	// Backend is one of "postgres", "redis", or "memory". The memory
	// backend loses state on restart and exists for local development.
	Backend     string `envconfig:"STORE_BACKEND" default:"postgres"`
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	RedisURI    string `envconfig:"REDIS_URI"`
}

// CompletionConfig holds the completion service endpoint configuration.
type CompletionConfig struct {
	Endpoint string `envconfig:"COMPLETION_ENDPOINT" required:"true"`
	APIKey   string `envconfig:"COMPLETION_API_KEY"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration for logical errors beyond required fields.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "postgres":
		if c.Store.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres store backend")
		}
	case "redis":
		if c.Store.RedisURI == "" {
			return fmt.Errorf("REDIS_URI is required for the redis store backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
