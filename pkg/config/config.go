package config

import (
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Importer ImporterConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ImporterConfig tunes the spreadsheet import pipeline.
type ImporterConfig struct {
	BatchSize            int
	IgnoreBalanceErrors  bool
	CheckNegativeBalance bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "lifebook-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Importer: ImporterConfig{
			BatchSize:            getEnvAsInt("IMPORT_BATCH_SIZE", 100),
			IgnoreBalanceErrors:  getEnvAsBool("IMPORT_IGNORE_BALANCE_ERRORS", false),
			CheckNegativeBalance: getEnvAsBool("IMPORT_CHECK_NEGATIVE_BALANCE", false),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
