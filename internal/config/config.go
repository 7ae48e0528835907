package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	JWTSecret   string
	RedisAddr   string
	StrictScore bool
	Database    DatabaseConfig
	DuelPoll    time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load reads configuration from environment variables with defaults suitable
// for local development. godotenv is expected to have run already.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		StrictScore: getEnv("SCORE_VERIFY", "") == "strict",
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "copa_trivia"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		DuelPoll: getEnvDuration("DUEL_POLL_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
