package config

import (
	"os"
	"strconv"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Worker   WorkerConfig
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string
	Port string
}

// AuthConfig holds JWT configuration.
type AuthConfig struct {
	JWTSecret      string
	ExpiresInHours int
}

// WorkerConfig holds background worker intervals.
type WorkerConfig struct {
	NotificationIntervalSeconds int // NOTIFICATION_WORKER_INTERVAL_SECONDS
	OverdueIntervalSeconds      int // OVERDUE_WORKER_INTERVAL_SECONDS
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "barangaylink"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			ExpiresInHours: getEnvInt("JWT_EXPIRES_HOURS", 24),
		},
		Worker: WorkerConfig{
			NotificationIntervalSeconds: getEnvInt("NOTIFICATION_WORKER_INTERVAL_SECONDS", 30),
			OverdueIntervalSeconds:      getEnvInt("OVERDUE_WORKER_INTERVAL_SECONDS", 900),
		},
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
