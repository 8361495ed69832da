package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "TOOLS_REDIS_CLOUD_"

// DefaultBaseURL is the public Redis Cloud management API endpoint.
const DefaultBaseURL = "https://api.redislabs.com/v1"

// Config holds credentials and connection settings for the Redis Cloud API,
// plus ambient service settings. Constructed once at startup, read-only after.
type Config struct {
	APIKey       string
	APISecretKey string
	BaseURL      string
	Timeout      time.Duration
	// CACert is an optional path to a PEM bundle overriding the system roots.
	CACert string

	LogLevel          string
	HTTPListenAddr    string
	MetricsListenAddr string
}

// Load reads configuration from TOOLS_REDIS_CLOUD_* environment variables.
// Missing credentials are reported by Validate, not here, so callers that
// only need the ambient settings can still load.
func Load() (*Config, error) {
	timeoutRaw := getEnv("TIMEOUT", "30")
	seconds, err := strconv.ParseFloat(timeoutRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %sTIMEOUT %q: %w", EnvPrefix, timeoutRaw, err)
	}

	cfg := &Config{
		APIKey:            getEnv("API_KEY", ""),
		APISecretKey:      getEnv("API_SECRET_KEY", ""),
		BaseURL:           getEnv("BASE_URL", DefaultBaseURL),
		Timeout:           time.Duration(seconds * float64(time.Second)),
		CACert:            getEnv("CA_CERT", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ":9090"),
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// Validate checks that credentials are present and the base URL is well formed.
// All problems with required variables are reported in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, EnvPrefix+"API_KEY")
	}
	if c.APISecretKey == "" {
		missing = append(missing, EnvPrefix+"API_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}
