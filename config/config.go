// Package config loads server configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	DBPath   string // ":memory:" for an ephemeral database

	// Break policy used when a project has no stored configuration.
	DefaultBreak time.Duration
	GracePeriod  time.Duration

	// Interval of the background totals sweep. Zero disables it.
	ReconcileInterval time.Duration

	LogLevel    slog.Level
	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr: getenvDefault("TIMECARD_HTTP_ADDR", ":8080"),
		DBPath:   getenvDefault("TIMECARD_DB_PATH", "timecards.db"),

		DefaultBreak: time.Duration(getenvInt("TIMECARD_DEFAULT_BREAK_MINUTES", 30)) * time.Minute,
		GracePeriod:  time.Duration(getenvInt("TIMECARD_GRACE_MINUTES", 5)) * time.Minute,

		ReconcileInterval: time.Duration(getenvInt("TIMECARD_RECONCILE_MINUTES", 60)) * time.Minute,

		LogLevel: parseLevel(os.Getenv("TIMECARD_LOG_LEVEL")),

		CORSOrigins: splitCSV(getenvDefault("TIMECARD_CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseLevel is fail-soft: anything unrecognised is info.
func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
