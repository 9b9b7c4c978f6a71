package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret    string // Required: HMAC signing secret for access/refresh tokens
	JWTAlgorithm string // Optional: HMAC algorithm (HS256, HS384, HS512) (default: HS256)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 24h)
	Timezone   string        // Optional: canonical timezone for stamped times (default: Asia/Ho_Chi_Minh)

	DatabaseFile  string // Optional: path to SQLite database file (default: ./comepass.db)
	RedisAddr     string // Optional: Redis host:port (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Optional: Redis database index (default: 0)

	AdminUsername string // Optional: seeded admin account username
	AdminEmail    string // Optional: seeded admin account email
	AdminPassword string // Optional: seeded admin account password

	OpenAIBaseURL string // Optional: chat completion endpoint root (default: https://api.openai.com/v1)
	OpenAIKey     string // Optional: chat completion API key; chat is degraded without it

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-session sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:    os.Getenv("COMEPASS_JWT_SECRET"),
		JWTAlgorithm: getEnvOrDefault("COMEPASS_JWT_ALGORITHM", "HS256"),

		AccessTTL:  getEnvDurationOrDefault("COMEPASS_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("COMEPASS_REFRESH_TTL", 24*time.Hour),
		Timezone:   getEnvOrDefault("COMEPASS_TIMEZONE", "Asia/Ho_Chi_Minh"),

		DatabaseFile:  getEnvOrDefault("COMEPASS_DATABASE_FILE", "comepass.db"),
		RedisAddr:     getEnvOrDefault("COMEPASS_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("COMEPASS_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("COMEPASS_REDIS_DB", 0),

		AdminUsername: os.Getenv("COMEPASS_ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("COMEPASS_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("COMEPASS_ADMIN_PASSWORD"),

		OpenAIBaseURL: getEnvOrDefault("COMEPASS_OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIKey:     os.Getenv("COMEPASS_OPENAI_API_KEY"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
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
	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
