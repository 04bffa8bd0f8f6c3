package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the process configuration. Command-line flags in main override
// the values loaded here.
type Config struct {
	DataDir            string
	Transport          string
	HTTPAddr           string
	CacheSize          int
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cacheSize, err := strconv.Atoi(getEnv("CRM_CACHE_SIZE", "128"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRM_CACHE_SIZE: %w", err)
	}

	cfg := &Config{
		DataDir:            getEnv("CRM_DATA_DIR", "./data"),
		Transport:          getEnv("CRM_TRANSPORT", "stdio"),
		HTTPAddr:           getEnv("CRM_HTTP_ADDR", ":8081"),
		CacheSize:          cacheSize,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: splitList(getEnv("CRM_CORS_ORIGINS", "*")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that may also have been set from flags.
func (c *Config) Validate() error {
	if c.CacheSize < 1 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	switch c.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport %q (use stdio or http)", c.Transport)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
