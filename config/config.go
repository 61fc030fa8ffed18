package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host             string
	Port             int
	DatabaseURL      string
	SessionCacheSize int
	LogLevel         string
	StorageKey       string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	return Config{
		Host:             getEnv("HOST", "127.0.0.1"),
		Port:             getEnvInt("PORT", 8080),
		DatabaseURL:      getEnv("DATABASE_URL", "qrstudio.db"),
		SessionCacheSize: getEnvInt("SESSION_CACHE_SIZE", 64),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		StorageKey:       getEnv("STORAGE_KEY", "cwz_last_qr"),
	}
}

// IsProduction reports whether logs should use the production encoder.
func (c Config) IsProduction() bool {
	return c.LogLevel == "INFO"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
