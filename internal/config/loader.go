package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file, a .env file and the
// process environment, in increasing order of precedence. When file is empty
// config.yaml is searched for in ./configs and the working directory.
func Load(file string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "resume-builder")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.read_buffer_size", DefaultReadBufferSize)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.resolve_timeout", 5*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.run_migrations", true)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("renderer.chrome_path", "")
	v.SetDefault("renderer.timeout", 60*time.Second)
	v.SetDefault("renderer.attempts", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// bindLegacyEnv keeps the short variable names used by existing deployments.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL", "JOBS_DATABASE_URL")
	_ = v.BindEnv("renderer.chrome_path", "RENDERER_CHROME_PATH", "CHROME_PATH")
	_ = v.BindEnv("logging.level", "LOGGING_LEVEL", "LOG_LEVEL")
}

func loadEnvFile() {
	paths := []string{".env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

const (
	DefaultReadBufferSize = 64 * 1024
	minReadBufferSize     = 4 * 1024
	maxReadBufferSize     = 1024 * 1024
	maxRendererAttempts   = 10
)

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Server.ReadBufferSize < minReadBufferSize || cfg.Server.ReadBufferSize > maxReadBufferSize {
		return fmt.Errorf("server.read_buffer_size must be between %d and %d, got %d",
			minReadBufferSize, maxReadBufferSize, cfg.Server.ReadBufferSize)
	}
	if cfg.Server.ResolveTimeout <= 0 {
		return fmt.Errorf("server.resolve_timeout must be positive")
	}
	if cfg.Renderer.Attempts < 1 || cfg.Renderer.Attempts > maxRendererAttempts {
		return fmt.Errorf("renderer.attempts must be between 1 and %d", maxRendererAttempts)
	}
	if cfg.Renderer.Timeout <= 0 {
		return fmt.Errorf("renderer.timeout must be positive")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}
