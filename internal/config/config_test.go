package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORAGE_BACKEND", "STORAGE_PATH", "STORAGE_FORMAT", "HTTP_ADDR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "students.dat", cfg.StoragePath)
	assert.Equal(t, "gob", cfg.StorageFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("STORAGE_FORMAT", "json")
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORAGE_BACKEND=sqlite\nSTORAGE_FORMAT=csv\nDB_NAME=studentdb\n"), 0o600))

	cfg := Load(envFile)

	// godotenv does not override variables that are already set.
	assert.Equal(t, "json", cfg.StorageFormat)
	assert.Equal(t, "studentdb", cfg.DBName)
	// An empty value in the environment counts as set for godotenv.
	assert.Equal(t, BackendFile, cfg.StorageBackend)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "localhost", DBUser: "yoru", DBPassword: "secret", DBName: "studentdb", DBPort: "5432"}
	assert.Equal(t, "host=localhost user=yoru password=secret dbname=studentdb port=5432 sslmode=disable", cfg.PostgresDSN())
}
