package router

import (
	"os"
	"strconv"
	"time"
)

// Config holds the HTTP surface settings.
type Config struct {
	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// ConfigFromEnv reads router config from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		CORSOrigin:      "http://localhost:3000",
		RateLimitMax:    100,
		RateLimitWindow: 15 * time.Minute,
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigin = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX")); err == nil && v > 0 {
		cfg.RateLimitMax = v
	}
	if v, err := time.ParseDuration(os.Getenv("RATE_LIMIT_WINDOW")); err == nil && v > 0 {
		cfg.RateLimitWindow = v
	}
	return cfg
}
