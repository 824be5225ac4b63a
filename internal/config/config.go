// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Bearer-token verification. Tokens are issued by an external identity
	// service; this process only validates them.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageEndpoint       string
	StorageAccessKey      string
	StorageSecretKey      string
	StorageBucket         string
	StorageUseSSL         bool
	StoragePublicEndpoint string // browser-reachable base, e.g. "http://localhost:9000"

	// Message broker
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		JWTSecret:   getEnv("JWT_SECRET", "change_me_in_production"),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),

		StorageEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		StorageAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		StorageSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		StorageBucket:         getEnv("MINIO_BUCKET", "uploads"),
		StorageUseSSL:         getEnv("MINIO_USE_SSL", "false") == "true",
		StoragePublicEndpoint: getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKER", "localhost:9092"), ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "files.uploaded"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "file-consumers"),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
