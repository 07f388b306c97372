package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by STORE_BACKEND and STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// AnalysisConfig selects and tunes the code analysis provider.
type AnalysisConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Timeout     time.Duration
	FixturePath string
	// StageDelay only paces the per-file status steps for the polling UI.
	StageDelay time.Duration
}

// UploadConfig bounds what POST /api/upload accepts.
type UploadConfig struct {
	MaxFiles          int
	MaxFileSize       int64
	AllowedExtensions []string
}

// WorkerConfig sizes the session processing pool.
type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	StoreBackend   string
	StorageBackend string
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Analysis       AnalysisConfig
	Upload         UploadConfig
	Worker         WorkerConfig
	Logging        LoggingConfig
}

// DefaultAllowedExtensions are the source file types accepted for review.
var DefaultAllowedExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".py", ".java", ".cpp", ".c", ".go"}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:5000"),
		Port:           getEnv("PORT", "5000"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "codereview-ai-files"),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Analysis: AnalysisConfig{
			Provider:    strings.ToLower(getEnv("ANALYSIS_PROVIDER", "mock")),
			Model:       getEnv("ANALYSIS_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			MaxTokens:   getEnvInt("ANALYSIS_MAX_TOKENS", 4000),
			Timeout:     getEnvDuration("ANALYSIS_TIMEOUT", 120*time.Second),
			FixturePath: getEnv("ANALYSIS_FIXTURE_PATH", ""),
			StageDelay:  getEnvDuration("PROCESSING_STAGE_DELAY", time.Second),
		},
		Upload: UploadConfig{
			MaxFiles:          getEnvInt("UPLOAD_MAX_FILES", 6),
			MaxFileSize:       int64(getEnvInt("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)),
			AllowedExtensions: getEnvList("UPLOAD_ALLOWED_EXTENSIONS", DefaultAllowedExtensions),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 4),
			QueueSize:   getEnvInt("WORKER_QUEUE_SIZE", 64),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// BodyLimit is the largest multipart request the HTTP server must accept.
func (u UploadConfig) BodyLimit() int {
	// room for multipart framing and the form fields
	return int(u.MaxFileSize)*u.MaxFiles + 1024*1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s") or plain milliseconds ("1500").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
