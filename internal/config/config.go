package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	DevMode       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PageSize               int
	AuthRateLimit          int
	AuthRateWindow         time.Duration
	LoginRevealUnknownUser bool
	Location               *time.Location
	AllowedOrigin          string

	LogLevel string
	LogJSON  bool
}

const devSessionSecret = "dev-session-secret-change-me"

// Load reads the configuration from env (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromLookup(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromLookup builds a Config from getenv. Missing required values are errors.
func FromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:                getenv("APP_PORT"),
		DatabaseURL:            getenv("DATABASE_URL"),
		SessionSecret:          getenv("SESSION_SECRET"),
		DevMode:                getenv("DEV_MODE") == "true",
		CookieSecure:           getenv("COOKIE_SECURE") == "true",
		RedisAddr:              getenv("REDIS_ADDR"),
		RedisPassword:          getenv("REDIS_PASSWORD"),
		LoginRevealUnknownUser: getenv("LOGIN_REVEAL_UNKNOWN_USER") == "true",
		AllowedOrigin:          getenv("ALLOWED_ORIGIN"),
		LogLevel:               getenv("LOG_LEVEL"),
		LogJSON:                getenv("LOG_JSON") == "true",
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.DatabaseURL == "" && !cfg.DevMode {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.SessionSecret == "" {
		if !cfg.DevMode {
			return nil, errors.New("SESSION_SECRET is not set")
		}
		cfg.SessionSecret = devSessionSecret
	}

	cfg.RedisDB = positiveInt(getenv("REDIS_DB"), 0)
	cfg.SessionTTL = time.Duration(positiveInt(getenv("SESSION_TTL"), 14*24*3600)) * time.Second
	cfg.PageSize = positiveInt(getenv("PAGE_SIZE"), 4)
	cfg.AuthRateLimit = positiveInt(getenv("AUTH_RATE_LIMIT"), 5)
	cfg.AuthRateWindow = time.Duration(positiveInt(getenv("AUTH_RATE_WINDOW_SECONDS"), 60)) * time.Second

	cfg.Location = time.UTC
	if tz := strings.TrimSpace(getenv("TIME_ZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, errors.New("TIME_ZONE is invalid: " + tz)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func positiveInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
