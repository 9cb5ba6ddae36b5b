package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ",", cfg.CSV.Delimiter)

	assert.Equal(t, "gemini-1.5-flash", cfg.AI.FlashModel)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.ProModel)
	assert.Equal(t, 5, cfg.AI.MaxAttempts)
	assert.Equal(t, 8192, cfg.AI.MaxOutputTokens)

	assert.Equal(t, 20000, cfg.Extract.SinglePassCharLimit)
	assert.Equal(t, 60, cfg.Extract.RowsPerChunk)
	assert.True(t, cfg.Extract.Dedup)

	assert.InDelta(t, 0.015, cfg.Balance.Tolerance, 1e-9)
	assert.InDelta(t, 0.9, cfg.Balance.CoverageThreshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.Balance.MaxAutoCorrection, 1e-9)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Log.Level = "info"
		cfg.Log.Format = "text"
		cfg.CSV.Delimiter = ","
		cfg.AI.MaxAttempts = 5
		cfg.Extract.SinglePassCharLimit = 20000
		cfg.Extract.RowsPerChunk = 60
		cfg.Balance.Tolerance = 0.015
		cfg.Balance.CoverageThreshold = 0.9
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "noisy" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"multi-char delimiter", func(c *Config) { c.CSV.Delimiter = ",," }, true},
		{"zero attempts", func(c *Config) { c.AI.MaxAttempts = 0 }, true},
		{"tiny char limit", func(c *Config) { c.Extract.SinglePassCharLimit = 100 }, true},
		{"zero rows per chunk", func(c *Config) { c.Extract.RowsPerChunk = 0 }, true},
		{"negative tolerance", func(c *Config) { c.Balance.Tolerance = -1 }, true},
		{"coverage above one", func(c *Config) { c.Balance.CoverageThreshold = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
