// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration. Every empirically
// tuned extraction threshold lives here so deployments can adjust them without
// a rebuild.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		FlashModel string `mapstructure:"flash_model" yaml:"flash_model"`
		ProModel   string `mapstructure:"pro_model" yaml:"pro_model"`
		APIKey     string `mapstructure:"api_key" yaml:"-"` // Never serialize API key

		MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
		// Base retry delay per model tier, multiplied by the attempt number.
		// The flash tier has a higher rate limit, so it waits less.
		FlashBaseDelayMS int `mapstructure:"flash_base_delay_ms" yaml:"flash_base_delay_ms"`
		ProBaseDelayMS   int `mapstructure:"pro_base_delay_ms" yaml:"pro_base_delay_ms"`
		// Pause between consecutive units of work, per tier.
		FlashIntervalMS int `mapstructure:"flash_interval_ms" yaml:"flash_interval_ms"`
		ProIntervalMS   int `mapstructure:"pro_interval_ms" yaml:"pro_interval_ms"`

		MaxOutputTokens int `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	} `mapstructure:"ai" yaml:"ai"`

	Extract struct {
		// Text shorter than this is safe for a single model response.
		SinglePassCharLimit int  `mapstructure:"single_pass_char_limit" yaml:"single_pass_char_limit"`
		RowsPerChunk        int  `mapstructure:"rows_per_chunk" yaml:"rows_per_chunk"`
		Dedup               bool `mapstructure:"dedup" yaml:"dedup"`
	} `mapstructure:"extract" yaml:"extract"`

	Balance struct {
		// Wider than simple rounding error to absorb two independent roundings.
		Tolerance         float64 `mapstructure:"tolerance" yaml:"tolerance"`
		CoverageThreshold float64 `mapstructure:"coverage_threshold" yaml:"coverage_threshold"`
		// Corrections above this magnitude (currency units) are flagged for
		// human review instead of silently applied at full confidence.
		MaxAutoCorrection float64 `mapstructure:"max_auto_correction" yaml:"max_auto_correction"`
	} `mapstructure:"balance" yaml:"balance"`

	Categories struct {
		FilePath string `mapstructure:"file_path" yaml:"file_path"`
	} `mapstructure:"categories" yaml:"categories"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.statement-extract")
	v.AddConfigPath(".statement-extract")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("EXTRACT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is always taken from the unprefixed environment variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. The extraction and balance
// numbers are empirically tuned; change them deliberately.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.flash_model", "gemini-1.5-flash")
	v.SetDefault("ai.pro_model", "gemini-1.5-pro")
	v.SetDefault("ai.max_attempts", 5)
	v.SetDefault("ai.flash_base_delay_ms", 2000)
	v.SetDefault("ai.pro_base_delay_ms", 5000)
	v.SetDefault("ai.flash_interval_ms", 1000)
	v.SetDefault("ai.pro_interval_ms", 3000)
	v.SetDefault("ai.max_output_tokens", 8192)

	v.SetDefault("extract.single_pass_char_limit", 20000)
	v.SetDefault("extract.rows_per_chunk", 60)
	v.SetDefault("extract.dedup", true)

	v.SetDefault("balance.tolerance", 0.015)
	v.SetDefault("balance.coverage_threshold", 0.9)
	v.SetDefault("balance.max_auto_correction", 10)

	v.SetDefault("categories.file_path", "")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.MaxAttempts < 1 || config.AI.MaxAttempts > 20 {
		return fmt.Errorf("ai.max_attempts must be between 1 and 20, got: %d", config.AI.MaxAttempts)
	}

	if config.Extract.SinglePassCharLimit < 1000 {
		return fmt.Errorf("extract.single_pass_char_limit must be at least 1000, got: %d", config.Extract.SinglePassCharLimit)
	}

	if config.Extract.RowsPerChunk < 1 {
		return fmt.Errorf("extract.rows_per_chunk must be positive, got: %d", config.Extract.RowsPerChunk)
	}

	if config.Balance.Tolerance <= 0 {
		return fmt.Errorf("balance.tolerance must be positive, got: %f", config.Balance.Tolerance)
	}

	if config.Balance.CoverageThreshold < 0.0 || config.Balance.CoverageThreshold > 1.0 {
		return fmt.Errorf("balance.coverage_threshold must be between 0.0 and 1.0, got: %f", config.Balance.CoverageThreshold)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
