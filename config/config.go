package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Import   ImportConfig   `yaml:"import"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// ImportConfig describes where static data comes from and how it is applied.
type ImportConfig struct {
	DataFile               string            `yaml:"data_file"`
	URL                    string            `yaml:"url"`
	Headers                map[string]string `yaml:"headers"`
	HTTPProxy              string            `yaml:"http_proxy"`
	Timezone               string            `yaml:"timezone"`
	Entities               []string          `yaml:"entities"`
	DeleteNotProvided      *bool             `yaml:"delete_not_provided"`
	RefreshIntervalSeconds int               `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration     `yaml:"-"` // Ignored by YAML parser
}

// DeleteUnlisted reports whether records missing from a batch are removed.
func (c ImportConfig) DeleteUnlisted() bool {
	return c.DeleteNotProvided == nil || *c.DeleteNotProvided
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogQueries             bool   `yaml:"log_queries"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration suitable for a local sqlite run.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Import.DataFile == "" && cfg.Import.URL == "" {
		cfg.Import.DataFile = "./data.json"
	}
	if cfg.Import.Timezone == "" {
		cfg.Import.Timezone = "UTC"
	}
	if cfg.Import.RefreshIntervalSeconds < 0 {
		log.Warn().Int("refresh_interval_seconds", cfg.Import.RefreshIntervalSeconds).Msg("negative refresh interval; importing once")
		cfg.Import.RefreshIntervalSeconds = 0
	}
	cfg.Import.RefreshInterval = time.Duration(cfg.Import.RefreshIntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "file:jobconnect.db?cache=shared"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
