package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	// Unlock session and message lifecycle tuning.
	UnlockDuration time.Duration
	MessageTTL     time.Duration

	// Billing product IDs as registered with the store console.
	UnlockProductID  string
	DestroyProductID string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:      getEnv("ENVIRONMENT", "development"),
		UnlockDuration:   time.Duration(getEnvAsInt64("UNLOCK_DURATION_SECONDS", 2*60)) * time.Second,
		MessageTTL:       time.Duration(getEnvAsInt64("MESSAGE_TTL_HOURS", 24)) * time.Hour,
		UnlockProductID:  getEnv("UNLOCK_PRODUCT_ID", "unlock_map_movement"),
		DestroyProductID: getEnv("DESTROY_PRODUCT_ID", "destroy_message"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
