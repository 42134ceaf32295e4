package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	Environment        string
	FirestoreProject   string
	StorageBucket      string
	UserServiceURL     string
	UserServiceTimeout int64 // seconds
	JWTSecret          string
	MaxImageSize       int64 // bytes
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8084"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		FirestoreProject:   getEnv("FIRESTORE_PROJECT_ID", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		UserServiceURL:     getEnv("USER_SERVICE_URL", "http://localhost:8082"),
		UserServiceTimeout: getEnvAsInt64("USER_SERVICE_TIMEOUT", 10),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		MaxImageSize:       getEnvAsInt64("MAX_IMAGE_SIZE", 5*1024*1024),
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
