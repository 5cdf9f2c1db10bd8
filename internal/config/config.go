package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the punch client.
type Config struct {
	APIBaseURL string
	DBPath     string
	Lang       string
	LogCalls   bool
	GeoCommand string

	RequestTimeoutMs   int
	RefreshTimeoutMs   int
	GeoTimeoutMs       int
	ProbeIntervalMs    int
	DashboardRefreshMs int
}

// DefaultConfig returns a Config pointing at a local backend. DBPath is left
// empty and resolved by ResolveDBPath.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:         "http://localhost:8000",
		Lang:               "en",
		RequestTimeoutMs:   15000,
		RefreshTimeoutMs:   10000,
		GeoTimeoutMs:       10000,
		ProbeIntervalMs:    15000,
		DashboardRefreshMs: 60000,
	}
}

// LoadConfig reads PUNCH_* environment variables, falling back to defaults
// for any unset or invalid values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PUNCH_API_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("PUNCH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PUNCH_LANG"); v != "" {
		cfg.Lang = v
	}
	if v := os.Getenv("PUNCH_GEO_CMD"); v != "" {
		cfg.GeoCommand = strings.TrimSpace(v)
	}
	if v := os.Getenv("PUNCH_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	applyPositiveMs(&cfg.RequestTimeoutMs, "PUNCH_TIMEOUT_MS")
	applyPositiveMs(&cfg.RefreshTimeoutMs, "PUNCH_REFRESH_TIMEOUT_MS")
	applyPositiveMs(&cfg.GeoTimeoutMs, "PUNCH_GEO_TIMEOUT_MS")
	applyPositiveMs(&cfg.ProbeIntervalMs, "PUNCH_PROBE_INTERVAL_MS")
	applyPositiveMs(&cfg.DashboardRefreshMs, "PUNCH_DASHBOARD_REFRESH_MS")

	return cfg
}

// ResolveDBPath returns DBPath, or ~/.punchclock/punch.db when unset.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".punchclock", "punch.db"), nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c Config) RefreshTimeout() time.Duration {
	return time.Duration(c.RefreshTimeoutMs) * time.Millisecond
}

func (c Config) GeoTimeout() time.Duration {
	return time.Duration(c.GeoTimeoutMs) * time.Millisecond
}

func (c Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalMs) * time.Millisecond
}

func (c Config) DashboardRefresh() time.Duration {
	return time.Duration(c.DashboardRefreshMs) * time.Millisecond
}

func applyPositiveMs(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}
