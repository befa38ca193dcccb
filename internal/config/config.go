// Package config loads application configuration from environment
// variables (ANALYZER_ prefix) layered over an optional YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	// FilePath is used when Output is "file" or "both".
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/analyzer.log"`
}

// CleaningConfig tunes the cleaning pipeline policy.
type CleaningConfig struct {
	IQRMultiplier float64 `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" default:"1.5" validate:"gt=0"`
	Sentinel      string  `yaml:"sentinel" envconfig:"SENTINEL" default:"dd" validate:"required"`
}

// ForecastConfig holds the forecasting defaults.
type ForecastConfig struct {
	Horizon        int     `yaml:"horizon" envconfig:"HORIZON" default:"3" validate:"min=1,max=120"`
	Period         string  `yaml:"period" envconfig:"PERIOD" default:"month" validate:"oneof=month quarter year"`
	BandMultiplier float64 `yaml:"band_multiplier" envconfig:"BAND_MULTIPLIER" default:"2" validate:"gt=0"`
}

// PathsConfig contains filesystem paths.
type PathsConfig struct {
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// Load loads configuration from environment variables and an optional
// YAML file. Environment variables (and their defaults) take
// precedence; the file fills whatever they left unset.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ANALYZER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Cleaning.IQRMultiplier == 0 {
		envConfig.Cleaning.IQRMultiplier = fileConfig.Cleaning.IQRMultiplier
	}
	if envConfig.Cleaning.Sentinel == "" {
		envConfig.Cleaning.Sentinel = fileConfig.Cleaning.Sentinel
	}
	if envConfig.Forecast.Horizon == 0 {
		envConfig.Forecast.Horizon = fileConfig.Forecast.Horizon
	}
	if envConfig.Forecast.Period == "" {
		envConfig.Forecast.Period = fileConfig.Forecast.Period
	}
	if envConfig.Forecast.BandMultiplier == 0 {
		envConfig.Forecast.BandMultiplier = fileConfig.Forecast.BandMultiplier
	}
	if envConfig.Paths.ReportsDir == "" {
		envConfig.Paths.ReportsDir = fileConfig.Paths.ReportsDir
	}
	return envConfig
}

// Default returns the configuration with all defaults applied and no
// file or environment input.
func Default() *Config {
	var cfg Config
	// envconfig applies struct defaults even when no variables are set.
	if err := envconfig.Process("ANALYZER_DEFAULTS_UNUSED", &cfg); err != nil {
		return &Config{
			Logging:  LoggingConfig{Level: "info", Format: "json", Output: "console", FilePath: "logs/analyzer.log"},
			Cleaning: CleaningConfig{IQRMultiplier: 1.5, Sentinel: "dd"},
			Forecast: ForecastConfig{Horizon: 3, Period: "month", BandMultiplier: 2},
			Paths:    PathsConfig{ReportsDir: "reports"},
		}
	}
	return &cfg
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
