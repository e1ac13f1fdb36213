package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	AppEnv            string
	LogLevel          string
	DatabaseURL       string
	JWTSecret         string
	RabbitMQURL       string
	PaymentServiceURL string
	VideoRoomBaseURL  string
	PendingSessionTTL time.Duration
}

func Load() *Config {
	// Missing .env is fine in production, variables come from the
	// environment there.
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       getEnv("DB_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		PaymentServiceURL: getEnv("PAYMENT_SERVICE_URL", "http://localhost:9090"),
		VideoRoomBaseURL:  getEnv("VIDEO_ROOM_BASE_URL", ""),
		PendingSessionTTL: time.Duration(getEnvInt("PENDING_SESSION_TTL_MINUTES", 30)) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
