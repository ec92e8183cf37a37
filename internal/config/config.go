// internal/config/config.go

// Package config centralises configuration parsing for the nutrition log
// service. Values come from the environment (optionally seeded from a .env
// file) and command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values.
type Config struct {
	HTTPHost          string
	HTTPPort          int
	DBDriver          string
	DBPath            string
	PostgresURL       string
	NutritionixAppID  string
	NutritionixAppKey string
	NutritionixURL    string
	LookupTimeout     time.Duration
	KafkaBrokers      []string // empty disables event publication
	KafkaTopic        string
	LogLevel          string
	LogFormat         string
	Timezone          string
}

// LoadDotEnv seeds the environment from .env files. Variables that are
// already set win, and a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads environment variables into Config, applying defaults for local dev.
func Load() Config {
	cfg := Config{
		HTTPHost:          getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort:          getIntEnv("HTTP_PORT", 8011),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:            getEnv("DB_PATH", "meals.db"),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		NutritionixAppID:  getEnv("NUTRITIONIX_APP_ID", ""),
		NutritionixAppKey: getEnv("NUTRITIONIX_APP_KEY", ""),
		NutritionixURL:    getEnv("NUTRITIONIX_URL", "https://trackapi.nutritionix.com"),
		LookupTimeout:     getDurationEnv("LOOKUP_TIMEOUT", 10*time.Second),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "meal_logged"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		Timezone:          getEnv("TIMEZONE", "Local"),
	}

	cfg.KafkaBrokers = splitAndTrim(getEnv("KAFKA_BROKERS", ""))
	return cfg
}

// ParseFlags lets command-line flags override the loaded values. It reports
// whether -version was requested.
func (c *Config) ParseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	var (
		address string
		version bool
	)
	fs.StringVar(&c.HTTPHost, "host", c.HTTPHost, "Host address")
	fs.StringVar(&address, "address", "", "Address (alias for host)")
	fs.IntVar(&c.HTTPPort, "port", c.HTTPPort, "Port for HTTP transport")
	fs.StringVar(&c.DBPath, "db-path", c.DBPath, "SQLite database path")
	fs.StringVar(&c.DBDriver, "db-driver", c.DBDriver, "Storage driver: sqlite or postgres")
	fs.BoolVar(&version, "version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return false, err
	}
	if address != "" {
		c.HTTPHost = address
	}
	return version, nil
}

// Address is the HTTP listen address.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Location resolves Timezone. "Local" and "" map to the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
