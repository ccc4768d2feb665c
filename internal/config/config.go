// Package config assembles the runtime configuration once at startup from
// the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	minSecretKeyLength    = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":                                     {},
}

type Config struct {
	Port string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	SecretKey    string
	TokenTTL     time.Duration
	CookieSecure bool

	Location  *time.Location
	LogLevel  string
	LogFormat string

	CORSAllowOrigins string

	RateLimitRPS   float64
	RateLimitBurst int
	RedisURL       string

	HealthDataOwnerWrites bool
}

// Load reads .env from the working directory when present, then the
// environment. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	var problems []error
	collect := func(err error) {
		if err != nil {
			problems = append(problems, err)
		}
	}

	cfg := &Config{
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:           getEnv("DB_PATH", filepath.Join("data", "calm.db")),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		Location:         loadLocation(getEnv("TZ", "UTC")),
	}

	var err error
	cfg.Port, err = resolvePort()
	collect(err)
	cfg.SecretKey, err = resolveSecretKey()
	collect(err)
	cfg.TokenTTL, err = parseDurationEnv("TOKEN_TTL", defaultTokenTTL)
	collect(err)
	cfg.CookieSecure, err = parseBoolEnv("COOKIE_SECURE", false)
	collect(err)
	cfg.HealthDataOwnerWrites, err = parseBoolEnv("HEALTHDATA_OWNER_WRITES", false)
	collect(err)
	cfg.RateLimitRPS, err = parseFloatEnv("RATE_LIMIT_RPS", defaultRateLimitRPS)
	collect(err)
	cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", defaultRateLimitBurst)
	collect(err)

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			collect(errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		collect(fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver))
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return cfg, nil
}

// AllowedOrigins splits CORS_ALLOW_ORIGINS on commas.
func (cfg *Config) AllowedOrigins() []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(cfg.CORSAllowOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := getEnv("PORT", defaultPort)
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be a number between 1 and 65535, got %q", raw)
	}
	return strconv.Itoa(port), nil
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return value, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return value, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return fallback, fmt.Errorf("%s must be a positive number, got %q", key, raw)
	}
	return value, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return value, nil
}
