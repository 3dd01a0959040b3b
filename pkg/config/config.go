// Package config provides configuration loading and validation for the
// treediff CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidCacheSize   = errors.New("invalid cache size")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Default configuration values.
const (
	defaultCacheSize = "64MB"
	defaultGitDir    = ".git"
)

// Config holds all configuration for the treediff CLI.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// RepositoryConfig holds repository access configuration.
type RepositoryConfig struct {
	// GitDir is the repository metadata directory holding objects/.
	GitDir string `mapstructure:"git_dir"`
}

// CacheConfig holds object-cache configuration.
type CacheConfig struct {
	// MaxSize is a humanize-format size string (e.g. "64MB", "1GiB").
	MaxSize string `mapstructure:"max_size"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// CacheSizeBytes resolves the configured cache size to bytes.
func (c *Config) CacheSizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(c.Cache.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, c.Cache.MaxSize)
	}

	return int64(size), nil //nolint:gosec // config sizes stay far below int64 range.
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("treediff")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("/etc/treediff")
	}

	viperCfg.SetEnvPrefix("TREEDIFF")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.git_dir", defaultGitDir)

	viperCfg.SetDefault("cache.enabled", true)
	viperCfg.SetDefault("cache.max_size", defaultCacheSize)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if _, err := humanize.ParseBytes(config.Cache.MaxSize); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCacheSize, config.Cache.MaxSize)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}
