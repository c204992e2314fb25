package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string

	// Database
	DatabaseURL string

	// Redis (empty addr falls back to the in-process cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Search
	SearchCacheTTL  time.Duration
	SearchTimeout   time.Duration
	DefaultPageSize int
	MaxPageSize     int

	// Internal API
	InternalAPIKey string

	// SigNoz
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "localhost:3000"),

		// Database - DATABASE_URL wins, otherwise built from discrete vars
		DatabaseURL: getDatabaseURL(),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Search
		SearchCacheTTL:  time.Duration(getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 300)) * time.Second,
		SearchTimeout:   time.Duration(getEnvAsInt("SEARCH_TIMEOUT_SECONDS", 10)) * time.Second,
		DefaultPageSize: getEnvAsInt("SEARCH_DEFAULT_PAGE_SIZE", 12),
		MaxPageSize:     getEnvAsInt("SEARCH_MAX_PAGE_SIZE", 100),

		// Internal API
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// Discrete vars match the k8s secret key names
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "property_portal")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
