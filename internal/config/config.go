package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	maxRateLimit   = 50
	minRateLimit   = 0
	maxScanWorkers = 16
	minScanWorkers = 1
	maxScanDepth   = 10
	minScanDepth   = 0
	minScanTimeout = time.Second
	maxScanTimeout = time.Hour
)

// Config holds 12-factor environment configuration used across binaries.
type Config struct {
	BaseURL         string
	APIKey          string
	Chain           string
	RateLimit       int
	HTTPRetries     int
	HTTPBackoffBase time.Duration
	Timeout         time.Duration
	Workers         int
	MaxDepth        int
	PolicyFile      string
	LogLevel        string
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func parseDurEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RedactKey hides all but a short prefix of an API key so it can appear in
// logs and dry-run plans without leaking the credential.
func RedactKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}

// Load reads environment variables and returns a Config with defaults applied.
func Load() Config {
	rateLimit := clampInt(parseIntEnv("RATE_LIMIT", 2), minRateLimit, maxRateLimit)
	workers := clampInt(parseIntEnv("SCAN_WORKERS", 4), minScanWorkers, maxScanWorkers)
	depth := clampInt(parseIntEnv("SCAN_MAX_DEPTH", 3), minScanDepth, maxScanDepth)
	timeout := clampDuration(parseDurEnv("SCAN_TIMEOUT", 5*time.Minute), minScanTimeout, maxScanTimeout)
	return Config{
		BaseURL:         env("ARKHAM_BASE_URL", "https://api.arkm.com"),
		APIKey:          env("ARKHAM_API_KEY", ""),
		Chain:           env("SCAN_CHAIN", "solana"),
		RateLimit:       rateLimit,
		HTTPRetries:     parseIntEnv("HTTP_RETRIES", 2),
		HTTPBackoffBase: parseDurEnv("HTTP_BACKOFF_BASE", time.Second),
		Timeout:         timeout,
		Workers:         workers,
		MaxDepth:        depth,
		PolicyFile:      env("POLICY_FILE", ""),
		LogLevel:        env("LOG_LEVEL", "info"),
	}
}
