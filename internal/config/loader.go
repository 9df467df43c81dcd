package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the booking service. Values are
// resolved in order: defaults, then an optional YAML file, then BOOKING_*
// environment variables.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	SessionTTL       time.Duration
	SessionSweepSpec string
	LogLevel         string
}

// fileConfig mirrors Config for YAML decoding. Durations are kept as strings
// so the file can use the same "24h" notation as the environment.
type fileConfig struct {
	HTTPPort         int    `yaml:"http_port"`
	SQLiteDSN        string `yaml:"sqlite_dsn"`
	SessionTTL       string `yaml:"session_ttl"`
	SessionSweepSpec string `yaml:"session_sweep_spec"`
	LogLevel         string `yaml:"log_level"`
}

// Load resolves configuration for the current process. A .env file in the
// working directory is read first so local development does not need exported
// variables; the optional config file path comes from BOOKING_CONFIG_FILE.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(strings.TrimSpace(os.Getenv("BOOKING_CONFIG_FILE")))
}

// LoadFrom resolves configuration using path as the YAML config file. An
// empty path skips the file layer.
func LoadFrom(path string) (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:booking.db?_foreign_keys=on",
		SessionTTL:       24 * time.Hour,
		SessionSweepSpec: "@hourly",
		LogLevel:         "info",
	}

	invalid := make([]string, 0, 2)

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if file.HTTPPort != 0 {
			cfg.HTTPPort = file.HTTPPort
		}
		if file.SQLiteDSN != "" {
			cfg.SQLiteDSN = file.SQLiteDSN
		}
		if file.SessionTTL != "" {
			ttl, err := time.ParseDuration(file.SessionTTL)
			if err != nil || ttl <= 0 {
				invalid = append(invalid, "session_ttl")
			} else {
				cfg.SessionTTL = ttl
			}
		}
		if file.SessionSweepSpec != "" {
			cfg.SessionSweepSpec = file.SessionSweepSpec
		}
		if file.LogLevel != "" {
			cfg.LogLevel = file.LogLevel
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if spec := strings.TrimSpace(os.Getenv("BOOKING_SESSION_SWEEP_SPEC")); spec != "" {
		cfg.SessionSweepSpec = spec
	}

	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "BOOKING_LOG_LEVEL")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
