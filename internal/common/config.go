package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Identity IdentityConfig
	Pipeline PipelineConfig
	LLM      LLMConfig
}

// DatabaseConfig holds document-store configuration
type DatabaseConfig struct {
	Driver           string // "postgres", "sqlite" or "memory"
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// IdentityConfig holds external identity-provider configuration
type IdentityConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// PipelineConfig holds document-pipeline behavior flags
type PipelineConfig struct {
	GatewayTimeout time.Duration
	PolicyPath     string // optional YAML reconciliation policy file
	MaxUploadBytes int64
}

// LLMConfig holds the optional LLM extractor configuration
type LLMConfig struct {
	Enabled     bool
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "jobswipe.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Identity: IdentityConfig{
			BaseURL:   getEnv("CLERK_BASE_URL", "https://api.clerk.com"),
			SecretKey: getEnv("CLERK_SECRET_KEY", ""),
			Timeout:   getEnvAsDuration("CLERK_TIMEOUT", 5*time.Second),
		},
		Pipeline: PipelineConfig{
			GatewayTimeout: getEnvAsDuration("GATEWAY_TIMEOUT", 5*time.Second),
			PolicyPath:     getEnv("POLICY_PATH", ""),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),
		},
		LLM: LLMConfig{
			Enabled:     getEnvAsBool("LLM_ENABLED", false),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return WrapError(ErrInvalidInput, "DB_URL is required with DB_DRIVER=postgres")
	}
	if c.Server.Addr == "" {
		return WrapError(ErrInvalidInput, "HTTP_ADDR is required")
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return WrapError(ErrInvalidInput, "OPENAI_API_KEY is required with LLM_ENABLED=true")
	}
	return nil
}
