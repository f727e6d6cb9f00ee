package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer   string // Required: expected issuer of session tokens
	Audience string // Required: audience this service accepts tokens for

	JWTSecret  string // Required: HS256 secret shared with the token issuer
	PepperFile string // Optional: path to the API token pepper file (default: ./pepper)

	DatabaseURL string // Required: Postgres connection string
	RedisAddr   string // Optional: Redis host:port (default: localhost:6379)
	RedisPass   string // Optional: Redis password
	RedisDB     int    // Optional: Redis database number (default: 0)

	SessionValidity time.Duration // Optional: max session age by jti (default: 30 days)
	CacheTTL        time.Duration // Optional: permission snapshot TTL (default: 5m)
	TTLMargin       time.Duration // Optional: extra TTL on revocation markers (default: 30s)
	ChangeChannel   string        // Optional: Postgres NOTIFY channel to relay (default: gatehouse_changes)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:   os.Getenv("GATE_ISSUER"),
		Audience: getEnvOrDefault("GATE_AUDIENCE", "gatehouse"),

		JWTSecret:  os.Getenv("GATE_JWT_SECRET"),
		PepperFile: getEnvOrDefault("GATE_PEPPER_FILE", "pepper"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     getEnvIntOrDefault("REDIS_DB", 0),

		SessionValidity: getEnvDurationOrDefault("GATE_SESSION_VALIDITY", 30*24*time.Hour),
		CacheTTL:        getEnvDurationOrDefault("GATE_CACHE_TTL", 5*time.Minute),
		TTLMargin:       getEnvDurationOrDefault("GATE_REVOCATION_TTL_MARGIN", 30*time.Second),
		ChangeChannel:   getEnvOrDefault("GATE_CHANGE_CHANNEL", "gatehouse_changes"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
