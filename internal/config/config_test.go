package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("QUERY_DEFAULT_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "anthropic", cfg.Research.Provider)
	assert.Equal(t, 30*time.Second, cfg.Research.Timeout)
	assert.Equal(t, 5, cfg.Research.DefaultCount)
	assert.Equal(t, 20, cfg.Query.DefaultLimit)
	assert.Equal(t, 100, cfg.Query.MaxLimit)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgresql")
	t.Setenv("POSTGRES_URI", "postgres://localhost/trends")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("RESEARCH_TIMEOUT", "5s")
	t.Setenv("RESEARCH_RATE_LIMIT", "0.5")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgresql", cfg.Storage.Type)
	assert.Equal(t, "openai", cfg.Research.Provider)
	assert.Equal(t, 5*time.Second, cfg.Research.Timeout)
	assert.Equal(t, 0.5, cfg.Research.RateLimit)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("RESEARCH_TIMEOUT", "forever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Research.Timeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   StorageConfig{Type: "sqlite", SQLitePath: ":memory:"},
			Research:  ResearchConfig{Provider: "anthropic", Timeout: time.Second, DefaultCount: 5, MaxCount: 20},
			Ingestion: IngestionConfig{MaxBatch: 100},
			Query:     QueryConfig{DefaultLimit: 20, MaxLimit: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "cassandra" }, wantErr: "unsupported storage type"},
		{name: "postgres without uri", mutate: func(c *Config) { c.Storage.Type = "postgresql" }, wantErr: "POSTGRES_URI"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Storage.Type = "mongodb" }, wantErr: "MONGODB_URI"},
		{name: "unknown provider", mutate: func(c *Config) { c.Research.Provider = "bard" }, wantErr: "unsupported LLM provider"},
		{name: "max below default", mutate: func(c *Config) { c.Research.MaxCount = 2 }, wantErr: "RESEARCH_MAX_COUNT"},
		{name: "zero batch", mutate: func(c *Config) { c.Ingestion.MaxBatch = 0 }, wantErr: "INGESTION_MAX_BATCH"},
		{name: "bad page size", mutate: func(c *Config) { c.Query.MaxLimit = 10 }, wantErr: "QUERY_DEFAULT_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
