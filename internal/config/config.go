package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Storage   StorageConfig
	Research  ResearchConfig
	Cache     CacheConfig
	Ingestion IngestionConfig
	Query     QueryConfig
	Server    ServerConfig
	Log       LogConfig
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type          string // "sqlite", "dynamodb", "mongodb", "postgresql"
	Region        string // For AWS DynamoDB
	TableName     string
	Endpoint      string // Custom endpoint for local testing
	MongoDBURI    string
	MongoDatabase string
	PostgresURI   string
	SQLitePath    string // ":memory:" for an in-process database
}

// ResearchConfig holds LLM provider configuration for trend research
type ResearchConfig struct {
	Provider     string // "anthropic" or "openai"
	APIKey       string
	Model        string
	BaseURL      string // Optional provider endpoint override
	Timeout      time.Duration
	DefaultCount int
	MaxCount     int
	RateLimit    float64 // Provider calls per second, 0 disables throttling
	RateBurst    int
	CacheTTL     time.Duration
}

// CacheConfig holds the research cache connection settings
type CacheConfig struct {
	RedisAddr     string // Empty disables the cache
	RedisPassword string
	RedisDB       int
}

// IngestionConfig holds bulk ingestion limits
type IngestionConfig struct {
	MaxBatch int
}

// QueryConfig holds list pagination defaults
type QueryConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Storage: StorageConfig{
			Type:          getEnv("STORAGE_TYPE", "sqlite"),
			Region:        getEnv("AWS_REGION", "us-west-2"),
			TableName:     getEnv("TABLE_NAME", "trends"),
			Endpoint:      getEnv("DYNAMODB_ENDPOINT", ""), // For local DynamoDB
			MongoDBURI:    getEnv("MONGODB_URI", ""),
			MongoDatabase: getEnv("MONGODB_DATABASE", "trending_topics"),
			PostgresURI:   getEnv("POSTGRES_URI", ""),
			SQLitePath:    getEnv("SQLITE_PATH", "data/trends.db"),
		},
		Research: ResearchConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "anthropic")),
			APIKey:       getEnv("LLM_API_KEY", ""),
			Model:        getEnv("LLM_MODEL", ""),
			BaseURL:      getEnv("LLM_BASE_URL", ""),
			Timeout:      getEnvDuration("RESEARCH_TIMEOUT", 30*time.Second),
			DefaultCount: getEnvInt("RESEARCH_DEFAULT_COUNT", 5),
			MaxCount:     getEnvInt("RESEARCH_MAX_COUNT", 20),
			RateLimit:    getEnvFloat("RESEARCH_RATE_LIMIT", 1),
			RateBurst:    getEnvInt("RESEARCH_RATE_BURST", 3),
			CacheTTL:     getEnvDuration("RESEARCH_CACHE_TTL", time.Hour),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Ingestion: IngestionConfig{
			MaxBatch: getEnvInt("INGESTION_MAX_BATCH", 100),
		},
		Query: QueryConfig{
			DefaultLimit: getEnvInt("QUERY_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvInt("QUERY_MAX_LIMIT", 100),
		},
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite storage")
		}
	case "postgresql":
		if c.Storage.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI is required for postgresql storage")
		}
	case "mongodb":
		if c.Storage.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required for mongodb storage")
		}
	case "dynamodb":
		if c.Storage.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required for dynamodb storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Research.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.Research.Provider)
	}

	if c.Research.DefaultCount < 1 {
		return fmt.Errorf("RESEARCH_DEFAULT_COUNT must be at least 1")
	}
	if c.Research.MaxCount < c.Research.DefaultCount {
		return fmt.Errorf("RESEARCH_MAX_COUNT must be >= RESEARCH_DEFAULT_COUNT")
	}
	if c.Research.Timeout <= 0 {
		return fmt.Errorf("RESEARCH_TIMEOUT must be positive")
	}
	if c.Ingestion.MaxBatch < 1 {
		return fmt.Errorf("INGESTION_MAX_BATCH must be at least 1")
	}
	if c.Query.DefaultLimit < 1 || c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("QUERY_DEFAULT_LIMIT must be in [1, QUERY_MAX_LIMIT]")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
