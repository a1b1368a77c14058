package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment; main autoloads a .env file first.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	Source        string        `env:"PORTFOLIO_SOURCE" envDefault:"database.json"`
	DBPath        string        `env:"PORTFOLIO_DB" envDefault:"portfolio.db"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	PageCacheTTL  time.Duration `env:"PAGE_CACHE_TTL" envDefault:"10m"`
	StaticDir     string        `env:"STATIC_DIR" envDefault:"./static"`
	ImagesDir     string        `env:"IMAGES_DIR" envDefault:"./images"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	GinMode       string        `env:"GIN_MODE" envDefault:"release"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT: must be greater than zero")
	}
	return cfg, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string { return ":" + c.Port }
