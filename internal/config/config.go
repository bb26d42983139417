package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config centralises environment configuration for the engine.
type Config struct {
	DatabaseURL string
	HTTPPort    string
	JWTSecret   string
	AutoMigrate bool
}

// Load reads .env (if present) and validates the critical variables.
func Load(lg *zap.SugaredLogger) *Config {
	_ = godotenv.Load()
	return &Config{
		DatabaseURL: getEnvOrFail(lg, "DATABASE_URL"),
		HTTPPort:    getEnvOrDefault("HTTP_PORT", "8080"),
		JWTSecret:   getEnvOrFail(lg, "JWT_SECRET"),
		AutoMigrate: os.Getenv("AUTO_MIGRATE") != "0",
	}
}

func getEnvOrFail(lg *zap.SugaredLogger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		lg.Fatalw("missing required environment variable", "key", key)
	}
	return v
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
