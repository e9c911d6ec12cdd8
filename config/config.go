package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	StorageType string // "local" or "r2"
	LocalPath   string
	R2AccountID string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string

	BackupCron        string
	MaxCaptureWorkers int
}

func LoadConfig() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	workers, _ := strconv.Atoi(getEnv("MAX_CAPTURE_WORKERS", "4"))
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		ServerPort: getEnv("PORT", "8080"),

		StorageType: getEnv("STORAGE_TYPE", "local"),
		LocalPath:   getEnv("BACKUP_EXPORT_PATH", "./exports"),
		R2AccountID: os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKey: os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Bucket:    os.Getenv("R2_BUCKET_NAME"),

		BackupCron:        os.Getenv("BACKUP_CRON"),
		MaxCaptureWorkers: workers,
	}
}

// getEnv retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
