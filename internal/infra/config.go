package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	StoragePath string

	BlobBackend       string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Prefix          string

	CredentialBackend string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiEditModel    string
	GeminiUpscaleModel string
	GeminiTimeout      time.Duration

	WatermarkText string
	ExportPrefix  string
	ExportDelay   time.Duration

	CORSOrigins   []string
	DefaultLocale string
	GeoIPDBPath   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	GenerateLimitPerMin int
	MaxUploadBytes      int64
	MaxImagePixels      int
}

const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		StoragePath: getEnv("STORAGE_PATH", "./data"),

		BlobBackend:       strings.ToLower(getEnv("BLOB_BACKEND", BackendFile)),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Prefix:          os.Getenv("S3_PREFIX"),

		CredentialBackend: strings.ToLower(getEnv("CREDENTIAL_BACKEND", BackendFile)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),

		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiEditModel:    getEnv("GEMINI_EDIT_MODEL", "gemini-2.5-flash-image"),
		GeminiUpscaleModel: getEnv("GEMINI_UPSCALE_MODEL", "gemini-3-pro-image-preview"),
		GeminiTimeout:      getEnvDuration("GEMINI_TIMEOUT_SECONDS", 120),

		WatermarkText: getEnv("WATERMARK_TEXT", "archedit"),
		ExportPrefix:  getEnv("EXPORT_PREFIX", "archedit"),
		ExportDelay:   time.Millisecond * time.Duration(getEnvInt("EXPORT_DELAY_MS", 400)),

		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 30),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 180),
		HTTPIdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 60),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		GenerateLimitPerMin: getEnvInt("GENERATE_LIMIT_PER_MINUTE", 10),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		MaxImagePixels:      getEnvInt("MAX_IMAGE_PIXELS", 36_000_000),
	}

	switch cfg.BlobBackend {
	case BackendFile:
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
	}

	switch cfg.CredentialBackend {
	case BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when CREDENTIAL_BACKEND=postgres")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CREDENTIAL_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported CREDENTIAL_BACKEND %q", cfg.CredentialBackend)
	}

	if cfg.ExportDelay < 0 {
		cfg.ExportDelay = 0
	}
	if cfg.MaxImagePixels <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be positive, got %d", cfg.MaxImagePixels)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallbackSeconds int) time.Duration {
	return time.Second * time.Duration(getEnvInt(key, fallbackSeconds))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
