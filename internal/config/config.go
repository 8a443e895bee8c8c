package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"techtrack/internal/sector"
)

// Config represents the application configuration
type Config struct {
	Scanner   ScannerConfig   `yaml:"scanner"`
	Universe  UniverseConfig  `yaml:"universe"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Sectors   sector.Taxonomy `yaml:"sectors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
}

// ScannerConfig holds batch run settings
type ScannerConfig struct {
	Workers      int           `yaml:"workers" validate:"min=1,max=256"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	LookbackDays int           `yaml:"lookback_days" validate:"min=1"`
}

// UniverseConfig points at the ticker list
type UniverseConfig struct {
	Path string `yaml:"path"` // CSV with Ticker,Sector,Exchange
}

// ProvidersConfig holds market data source settings
type ProvidersConfig struct {
	TCBS  ProviderConfig `yaml:"tcbs"`
	Yahoo ProviderConfig `yaml:"yahoo"`
}

// ProviderConfig holds individual provider settings
type ProviderConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	RateLimit int    `yaml:"rate_limit" validate:"gte=0"` // requests per minute
}

// CacheConfig selects the bar cache backend
type CacheConfig struct {
	Backend  string        `yaml:"backend" validate:"oneof=none memory redis"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
	Addr     string        `yaml:"addr" validate:"required_if=Backend redis"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// ServerConfig holds settings for the serve command
type ServerConfig struct {
	Port    int    `yaml:"port" validate:"min=1,max=65535"`
	Refresh string `yaml:"refresh"` // cron spec, empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Scanner: ScannerConfig{
			Workers:      15,
			Timeout:      5 * time.Minute,
			LookbackDays: 365,
		},
		Universe: UniverseConfig{
			Path: "TA_Tracking_List.csv",
		},
		Providers: ProvidersConfig{
			TCBS:  ProviderConfig{Enabled: true, RateLimit: 120},
			Yahoo: ProviderConfig{Enabled: true, RateLimit: 60},
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     5 * time.Minute,
			Prefix:  "techtrack:bars:",
		},
		Sectors: sector.DefaultTaxonomy(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Port:    8080,
			Refresh: "30 15 * * 1-5",
		},
	}
	applyEnv(cfg)
	return cfg
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Environment wins over the file
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("TECHTRACK_REDIS_ADDR"); addr != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.Addr = addr
	}
	if path := os.Getenv("TECHTRACK_UNIVERSE"); path != "" {
		cfg.Universe.Path = path
	}
	if level := os.Getenv("TECHTRACK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if n, err := strconv.Atoi(os.Getenv("TECHTRACK_WORKERS")); err == nil && n > 0 {
		cfg.Scanner.Workers = n
	}
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.Providers.TCBS.Enabled && !c.Providers.Yahoo.Enabled {
		return fmt.Errorf("at least one provider (tcbs or yahoo) must be enabled")
	}
	if c.Server.Refresh != "" {
		if _, err := cron.ParseStandard(c.Server.Refresh); err != nil {
			return fmt.Errorf("invalid server.refresh %q: %w", c.Server.Refresh, err)
		}
	}
	return nil
}
