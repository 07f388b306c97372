package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("ANALYSIS_TIMEOUT", "30s")
	t.Setenv("PROCESSING_STAGE_DELAY", "0")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Analysis.StageDelay)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"STORE_BACKEND", "STORAGE_BACKEND", "ANALYSIS_PROVIDER", "UPLOAD_MAX_FILES", "UPLOAD_MAX_FILE_SIZE", "UPLOAD_ALLOWED_EXTENSIONS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "mock", cfg.Analysis.Provider)
	assert.Equal(t, 6, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, DefaultAllowedExtensions, cfg.Upload.AllowedExtensions)
	assert.Greater(t, cfg.Upload.BodyLimit(), 6*10*1024*1024)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, "2m")
	assert.Equal(t, 2*time.Minute, getEnvDuration(key, time.Second))

	os.Setenv(key, "1500")
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration(key, time.Second))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, " .GO, .rs ,,")
	assert.Equal(t, []string{".go", ".rs"}, getEnvList(key, nil))

	os.Setenv(key, " , ")
	assert.Equal(t, []string{".x"}, getEnvList(key, []string{".x"}))
}
