package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	LLM      LLMConfig
	Filter   FilterConfig
	OCR      OCRSourceConfig
}

// DatabaseConfig holds database-related configuration.
// The database is optional: an empty DSN disables run persistence.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// FilterConfig holds defaults for the relevance page filter.
type FilterConfig struct {
	MinDollarAmount int // smallest $-amount that makes a page interesting
	NeighborRadius  int // context pages kept on each side of a hit
	MaxPages        int // 0 = no cap
}

// OCRSourceConfig names the two OCR sources used in combined documents.
type OCRSourceConfig struct {
	SourceALabel string
	SourceBLabel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		Filter: FilterConfig{
			MinDollarAmount: getEnvAsInt("FILTER_MIN_DOLLAR_AMOUNT", 200),
			NeighborRadius:  getEnvAsInt("FILTER_NEIGHBOR_RADIUS", 1),
			MaxPages:        getEnvAsInt("FILTER_MAX_PAGES", 0),
		},
		OCR: OCRSourceConfig{
			SourceALabel: getEnv("OCR_SOURCE_A_LABEL", "TESSERACT (Buffer=1)"),
			SourceBLabel: getEnv("OCR_SOURCE_B_LABEL", "PYMUPDF (Buffer=0)"),
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Filter.MinDollarAmount < 0 {
		return NewAppError("CONFIG_ERROR", "FILTER_MIN_DOLLAR_AMOUNT must be >= 0", ErrInvalidInput)
	}
	if c.Filter.NeighborRadius < 0 {
		return NewAppError("CONFIG_ERROR", "FILTER_NEIGHBOR_RADIUS must be >= 0", ErrInvalidInput)
	}
	return nil
}
