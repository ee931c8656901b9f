package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	BaseURL        string
	DatabaseURL    string
	RedisURL       string
	LogFile        string
	Email          EmailConfig
	Tokens         TokenConfig
	TrustedProxies []string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0 && e.From != ""
}

// TokenConfig holds one secret per token purpose so a token signed for
// one purpose can never verify for another.
type TokenConfig struct {
	AccessSecret string
	EmailSecret  string
	ResetSecret  string
	AccessTTL    time.Duration
	EmailTTL     time.Duration
	ResetTTL     time.Duration
}

func Load() (Config, error) {
	clean := func(val string) string {
		return strings.Trim(val, "\"' \t\r\n")
	}

	rawPort := strings.Trim(getenvDefault("EMAIL_SERVER_PORT", "587"), "\"' ")
	emailPort, err := strconv.Atoi(rawPort)
	if err != nil {
		emailPort = 587
	}

	cfg := Config{
		Port:           getenvDefault("PORT", "8080"),
		BaseURL:        getenvDefault("APP_BASE_URL", "http://localhost:3000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getenvDefault("REDIS_URL", "redis://localhost:6379"),
		LogFile:        getenvDefault("LOG_FILE", "logs/server.log"),
		TrustedProxies: parseList(os.Getenv("TRUSTED_PROXIES")),
	}

	cfg.Email = EmailConfig{
		Host:     clean(os.Getenv("EMAIL_SERVER_HOST")),
		Port:     emailPort,
		Username: clean(os.Getenv("EMAIL_SERVER_USER")),
		Password: clean(os.Getenv("EMAIL_SERVER_PASSWORD")),
		From:     clean(os.Getenv("EMAIL_FROM")),
		Secure:   parseBool(os.Getenv("EMAIL_SERVER_SECURE")),
	}

	cfg.Tokens = TokenConfig{
		AccessSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		EmailSecret:  os.Getenv("EMAIL_TOKEN_SECRET"),
		ResetSecret:  os.Getenv("RESET_TOKEN_SECRET"),
		AccessTTL:    parseDuration(os.Getenv("ACCESS_TOKEN_TTL"), 24*time.Hour),
		EmailTTL:     parseDuration(os.Getenv("EMAIL_TOKEN_TTL"), 30*time.Minute),
		ResetTTL:     parseDuration(os.Getenv("RESET_TOKEN_TTL"), time.Hour),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Tokens.AccessSecret == "" || cfg.Tokens.EmailSecret == "" || cfg.Tokens.ResetSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET, EMAIL_TOKEN_SECRET and RESET_TOKEN_SECRET are required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func parseBool(val string) bool {
	if val == "" {
		return false
	}
	val = strings.ToLower(strings.Trim(val, "\"' "))
	return val == "1" || val == "true" || val == "yes"
}

func parseList(val string) []string {
	parts := strings.Split(val, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
