package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// ReadBufferSize caps the request line and headers. Preview payloads
	// travel in the query string, so it bounds the largest resume served.
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// ResolveTimeout bounds how long a preview request may stay Loading.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig points at the Postgres instance holding render history.
// An empty URL disables history recording.
type DatabaseConfig struct {
	URL           string `mapstructure:"url"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

// RedisConfig points at the PDF cache. An empty address disables caching.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RendererConfig struct {
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Attempts   int           `mapstructure:"attempts"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
