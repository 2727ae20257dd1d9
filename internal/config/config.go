package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	RedisURL        string
	ConversationTTL time.Duration

	WhatsAppBaseURL     string
	WhatsAppClientToken string
	WhatsAppSendPerSec  float64
	WebhookToken        string

	FarmAPIBaseURL  string
	FarmAuthBaseURL string
	FarmUser        string
	FarmPassword    string
	GrowerID        string

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	WhisperModelPath string

	MediaArchiveEnabled bool
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool

	CORSAllowAll bool
	CORSOrigins  []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	minioEndpoint := getEnv("MINIO_ENDPOINT", "")
	archiveEnabled := strings.EqualFold(getEnv("MEDIA_ARCHIVE_ENABLED", "true"), "true")

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ConversationTTL: mustDuration(getEnv("CONVERSATION_TTL", "30m")),

		WhatsAppBaseURL:     getEnv("ZAPI_BASE_URL", ""),
		WhatsAppClientToken: getEnv("ZAPI_CLIENT_TOKEN", ""),
		WhatsAppSendPerSec:  mustFloat(getEnv("ZAPI_SEND_PER_SEC", "1")),
		WebhookToken:        getEnv("WEBHOOK_TOKEN", ""),

		FarmAPIBaseURL:  getEnv("FARM_API_BASE_URL", ""),
		FarmAuthBaseURL: getEnv("FARM_AUTH_BASE_URL", ""),
		FarmUser:        getEnv("FARM_USER", ""),
		FarmPassword:    getEnv("FARM_PASSWORD", ""),
		GrowerID:        getEnv("FARM_GROWER_ID", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GroqModel:    getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		WhisperModelPath: getEnv("WHISPER_MODEL_PATH", ""),

		MediaArchiveEnabled: archiveEnabled && minioEndpoint != "",
		MinioEndpoint:       minioEndpoint,
		MinioAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:         getEnv("MINIO_BUCKET", "consumo-media"),
		MinioUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,
	}

	if cfg.WhatsAppBaseURL == "" {
		return nil, fmt.Errorf("ZAPI_BASE_URL is required")
	}
	if cfg.FarmAPIBaseURL == "" || cfg.FarmAuthBaseURL == "" {
		return nil, fmt.Errorf("FARM_API_BASE_URL and FARM_AUTH_BASE_URL are required")
	}
	if cfg.FarmUser == "" || cfg.FarmPassword == "" {
		return nil, fmt.Errorf("FARM_USER and FARM_PASSWORD are required")
	}
	if cfg.GrowerID == "" {
		return nil, fmt.Errorf("FARM_GROWER_ID is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if cfg.ConversationTTL <= 0 {
		return nil, fmt.Errorf("CONVERSATION_TTL must be a positive duration")
	}
	if cfg.MediaArchiveEnabled && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustFloat(value string) float64 {
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%g", &f); err != nil {
		return 1
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
