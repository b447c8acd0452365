// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings (serve mode only)
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Scoring pipeline
	ModelPath  string // Path to the MLP classifier artifact (required)
	InputPath  string // Input transaction table (batch mode)
	OutputPath string // Scored result table (batch mode)

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory audit store if not set)

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)

	// Serve mode limits
	MaxBatchRows int // Largest record set a single score request may carry
}

// Defaults
const (
	DefaultPort         = "8080"
	DefaultEnv          = "development"
	DefaultLogLevel     = "info"
	DefaultInputPath    = "temp_input.csv"
	DefaultOutputPath   = "temp_predictions.csv"
	DefaultMaxBatchRows = 10000
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		ModelPath:    os.Getenv("MODEL_PATH"), // Required, no default
		InputPath:    getEnv("INPUT_PATH", DefaultInputPath),
		OutputPath:   getEnv("OUTPUT_PATH", DefaultOutputPath),
		DatabaseURL:  os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MaxBatchRows: getEnvInt("MAX_BATCH_ROWS", DefaultMaxBatchRows),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}

	if c.MaxBatchRows <= 0 {
		return fmt.Errorf("MAX_BATCH_ROWS must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
