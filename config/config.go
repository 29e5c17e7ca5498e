package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	BackendURL string
	DbUrl      string
	RedisUrl   string
	AdminToken string
	APIBase    string
}

func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		Port:       getEnvOrDefault("PORT", "3000"),
		BackendURL: normalizeURL(getEnvOrDefault("BACKEND_URL", "http://localhost:5001")),
		DbUrl:      os.Getenv("DB_URL"),
		RedisUrl:   os.Getenv("REDIS_URL"),
		AdminToken: getEnvOrDefault("ADMIN_TOKEN", "truevail-admin"),
		APIBase:    getEnvOrDefault("API_BASE", "http://localhost:3000"),
	}, nil
}

// Standalone — режим без базы данных: аккаунты и история недоступны,
// анализ работает как обычно.
func (c *Config) Standalone() bool {
	return c.DbUrl == ""
}

func normalizeURL(u string) string {
	return strings.TrimRight(u, "/")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
