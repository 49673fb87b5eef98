// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the copilot-server settings.
type Config struct {
	Port            string
	GeminiAPIKey    string
	GeminiModel     string
	Dialect         string
	HistoryPath     string
	EchoOnly        bool
	RateLimitPerMin int
	OverpassURL     string
	RequestTimeout  time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over .env values.
func Load() (*Config, error) {
	// Best effort: running without a .env file is the normal case in
	// containers.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("COPILOT_PORT", "8080"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		Dialect:         getEnv("COPILOT_DIALECT", "arcpy"),
		HistoryPath:     getEnv("COPILOT_HISTORY_PATH", "copilot-history.db"),
		EchoOnly:        getEnvBool("COPILOT_ECHO_ONLY", false),
		RateLimitPerMin: getEnvInt("COPILOT_RATE_LIMIT_PER_MIN", 10),
		OverpassURL:     getEnv("COPILOT_OVERPASS_URL", ""),
		RequestTimeout:  time.Duration(getEnvInt("COPILOT_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if cfg.Dialect != "arcpy" && cfg.Dialect != "pyqgis" {
		return nil, fmt.Errorf("invalid COPILOT_DIALECT %q: must be \"arcpy\" or \"pyqgis\"", cfg.Dialect)
	}

	if !cfg.EchoOnly && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required; set COPILOT_ECHO_ONLY=true to run without a model")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
