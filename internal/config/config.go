package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50

	// StorageMemory keeps the inventory in process memory.
	StorageMemory = "memory"
	// StorageSQLite keeps the inventory in a SQLite database file.
	StorageSQLite = "sqlite"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string        `yaml:"port"`
	InventoryFile        string        `yaml:"inventory_file"`
	StorageDriver        string        `yaml:"-"`
	SQLitePath           string        `yaml:"-"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	EnableCompression    bool          `yaml:"enable_compression"`
	RateLimitRPS         float64       `yaml:"-"`
	RateLimitBurst       int           `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	InventoryFile        string        `yaml:"inventory_file"`
	Storage              yamlStorage   `yaml:"storage"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	EnableCompression    *bool         `yaml:"enable_compression"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlStorage represents the storage section in YAML.
type yamlStorage struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	InventoryFile  *string
	StorageDriver  *string
	SQLitePath     *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables
	applyEnvConfig(&cfg)

	// Load from YAML file if specified (overrides environment)
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		StorageDriver:        StorageMemory,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		EnableCompression:    true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yamlCfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.InventoryFile != "" {
		cfg.InventoryFile = yamlCfg.InventoryFile
	}

	if yamlCfg.Storage.Driver != "" {
		cfg.StorageDriver = yamlCfg.Storage.Driver
	}

	if yamlCfg.Storage.SQLitePath != "" {
		cfg.SQLitePath = yamlCfg.Storage.SQLitePath
	}

	durations := []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.EnableCompression != nil {
		cfg.EnableCompression = *yamlCfg.EnableCompression
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if path := strings.TrimSpace(os.Getenv("INVENTORY_FILE")); path != "" {
		cfg.InventoryFile = path
	}

	if driver := strings.TrimSpace(os.Getenv("STORAGE_DRIVER")); driver != "" {
		cfg.StorageDriver = strings.ToLower(driver)
	}

	if path := strings.TrimSpace(os.Getenv("SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if enabled, ok := envBool("ENABLE_REQUEST_LOGGING"); ok {
		cfg.EnableRequestLogging = enabled
	}

	if enabled, ok := envBool("ENABLE_COMPRESSION"); ok {
		cfg.EnableCompression = enabled
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// envBool reads a boolean environment variable; unparsable values are ignored.
func envBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.InventoryFile != nil && *overrides.InventoryFile != "" {
		cfg.InventoryFile = *overrides.InventoryFile
	}

	if overrides.StorageDriver != nil && *overrides.StorageDriver != "" {
		cfg.StorageDriver = strings.ToLower(*overrides.StorageDriver)
	}

	if overrides.SQLitePath != nil && *overrides.SQLitePath != "" {
		cfg.SQLitePath = *overrides.SQLitePath
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	switch cfg.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return nil
}
