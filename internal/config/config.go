package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

type Config struct {
	StorageBackend string
	StoragePath    string
	StorageFormat  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	HTTPAddr   string
	CORSOrigin string
	UploadDir  string

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. Variables found in
// files (default ".env") are applied first; missing files are ignored and
// variables already set in the environment win.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)

	return Config{
		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		StoragePath:    getEnv("STORAGE_PATH", "students.dat"),
		StorageFormat:  getEnv("STORAGE_FORMAT", "gob"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		UploadDir:  getEnv("UPLOAD_DIR", "uploads"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// PostgresDSN builds the connection string from the DB_* variables.
func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
