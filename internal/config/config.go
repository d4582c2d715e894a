package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	JWTSecret string
	JWTIssuer string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	MLProviderURL    string
	MLProviderAPIKey string

	// LoginTracker selects the failed-login store: "memory" or "redis".
	LoginTracker string
	RedisAddr    string

	ResetURLBase string
}

// FromEnv loads configuration, reading a .env file first when one is
// present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:         envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		LogLevel:         envDefault("LOG_LEVEL", "info"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        envDefault("JWT_ISSUER", "jobstream-api"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         envInt("SMTP_PORT", 587),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         envDefault("SMTP_FROM", "noreply@jobstream.io"),
		MLProviderURL:    os.Getenv("ML_PROVIDER_URL"),
		MLProviderAPIKey: os.Getenv("ML_PROVIDER_API_KEY"),
		LoginTracker:     envDefault("LOGIN_TRACKER", "memory"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		ResetURLBase:     envDefault("RESET_URL_BASE", "http://localhost:3000/reset-password"),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
