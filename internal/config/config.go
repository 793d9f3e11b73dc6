package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	DecodeAPIURL  string        // Third-party endpoint that decodes QR codes from images
	DecodeTimeout time.Duration // Per-request timeout for the decode endpoint
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	timeoutStr := getEnv("DECODE_TIMEOUT_SECONDS", "30")
	timeoutSecs, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./scanvault.db"),
		DecodeAPIURL:  getEnv("DECODE_API_URL", "https://api.qrserver.com/v1/read-qr-code/"),
		DecodeTimeout: time.Duration(timeoutSecs) * time.Second,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
