package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	UseMemoryStore bool

	// AdminID is the opaque chat identity with report and occupant-name privileges.
	AdminID string

	GatewayURL   string
	GatewayToken string

	SalonName    string
	SalonAddress string

	SweepInterval time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		AdminID:        getEnv("ADMIN_ID", ""),
		GatewayURL:     getEnv("GATEWAY_URL", ""),
		GatewayToken:   getEnv("GATEWAY_TOKEN", ""),
		SalonName:      getEnv("SALON_NAME", "AgendaZap"),
		SalonAddress:   getEnv("SALON_ADDRESS", "Rua das Flores, 123 - Centro"),
		SweepInterval:  getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
