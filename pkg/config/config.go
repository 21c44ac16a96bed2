package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Extraction    ExtractionConfig
	Resolver      ResolverConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
}

type ExtractionConfig struct {
	// PdftotextPath is the external binary used for layout-preserving text
	// extraction. Must be on PATH if not absolute.
	PdftotextPath  string
	TimeoutSeconds int
	// ProfilesPath optionally points to a YAML file overriding the
	// built-in vendor profiles.
	ProfilesPath string
}

type ResolverConfig struct {
	// Threshold is the minimum similarity score (0-100) a store-map entry
	// must reach before its store_id is accepted.
	Threshold int
}

type StorageConfig struct {
	LocalPath    string
	RetentionTTL int // hours; stored uploads and exports older than this are pruned
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
	LogLevel       string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first; variables already set in the real
// environment keep precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			MaxUploadBytes:     getEnvAsInt64("SERVER_MAX_UPLOAD_BYTES", 32<<20),
		},
		Extraction: ExtractionConfig{
			PdftotextPath:  getEnv("PDFTOTEXT_PATH", "pdftotext"),
			TimeoutSeconds: getEnvAsInt("PDFTOTEXT_TIMEOUT_SECONDS", 30),
			ProfilesPath:   getEnv("VENDOR_PROFILES_PATH", ""),
		},
		Resolver: ResolverConfig{
			Threshold: getEnvAsInt("RESOLVER_THRESHOLD", 75),
		},
		Storage: StorageConfig{
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			RetentionTTL: getEnvAsInt("STORAGE_RETENTION_HOURS", 24),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Resolver.Threshold < 0 || cfg.Resolver.Threshold > 100 {
		return nil, fmt.Errorf("RESOLVER_THRESHOLD must be between 0 and 100, got %d", cfg.Resolver.Threshold)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
