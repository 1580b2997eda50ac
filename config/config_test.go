package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "newsqa.db", cfg.DatabasePath)
	assert.Equal(t, "newsqa-index", cfg.IndexDir)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AIHost)
	assert.Equal(t, "none", cfg.APIKey)
	assert.Equal(t, 5, cfg.CrawlLimit)
	assert.Equal(t, 800*time.Millisecond, cfg.CrawlDelay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSQA_DB_PATH", "/tmp/custom.db")
	t.Setenv("NEWSQA_CRAWL_LIMIT", "12")
	t.Setenv("NEWSQA_CRAWL_DELAY_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath)
	assert.Equal(t, 12, cfg.CrawlLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.CrawlDelay)
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv("NEWSQA_CRAWL_LIMIT", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database path", func(c *Config) { c.DatabasePath = "" }},
		{"missing index dir", func(c *Config) { c.IndexDir = "" }},
		{"missing AI host", func(c *Config) { c.AIHost = "" }},
		{"missing API key", func(c *Config) { c.APIKey = "" }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing generation model", func(c *Config) { c.GenerationModel = "" }},
		{"zero crawl limit", func(c *Config) { c.CrawlLimit = 0 }},
		{"negative crawl delay", func(c *Config) { c.CrawlDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
