package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	LogLevel    string
	Port        string
	DatabaseURL string
	DBMaxConns  int
	StoreDriver string
	RedisURL    string

	TelegramBotToken string
	WebhookURL       string
	WebhookSecret    string
	AdminIDs         []int64
	AdminAPIToken    string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	ConversationTTL      time.Duration
	BroadcastRatePerSec  int
	BroadcastConcurrency int
	DigestSchedule       string
	UserRateLimitPerMin  int
	LegalSearchCacheSize int
	LegalSearchCacheTTL  time.Duration
	HandlerTimeout       time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 16),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		RedisURL:             os.Getenv("REDIS_URL"),
		TelegramBotToken:     strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		WebhookURL:           strings.TrimRight(os.Getenv("WEBHOOK_URL"), "/"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		AdminAPIToken:        os.Getenv("ADMIN_API_TOKEN"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:        os.Getenv("GEMINI_BASE_URL"),
		GeminiTimeout:        time.Second * time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 45)),
		ConversationTTL:      time.Minute * time.Duration(getEnvInt("CONVERSATION_TTL_MINUTES", 30)),
		BroadcastRatePerSec:  getEnvInt("BROADCAST_RATE_PER_SECOND", 25),
		BroadcastConcurrency: getEnvInt("BROADCAST_CONCURRENCY", 4),
		DigestSchedule:       getEnvRaw("DIGEST_SCHEDULE", "0 9 * * *"),
		UserRateLimitPerMin:  getEnvInt("USER_RATE_LIMIT_PER_MINUTE", 20),
		LegalSearchCacheSize: getEnvInt("LEGAL_SEARCH_CACHE_SIZE", 256),
		LegalSearchCacheTTL:  time.Minute * time.Duration(getEnvInt("LEGAL_SEARCH_CACHE_TTL_MINUTES", 10)),
		HandlerTimeout:       time.Second * time.Duration(getEnvInt("BOT_HANDLER_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	ids, err := getEnvInt64List("ADMIN_IDS")
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = ids

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER %q is not supported", cfg.StoreDriver)
	}

	if cfg.BroadcastRatePerSec <= 0 || cfg.BroadcastConcurrency <= 0 {
		return nil, fmt.Errorf("broadcast rate and concurrency must be positive")
	}

	return cfg, nil
}

// WebhookEndpoint is the URL Telegram posts updates to, or "" when no public URL is configured.
func (c *Config) WebhookEndpoint() string {
	if c.WebhookURL == "" {
		return ""
	}
	return c.WebhookURL + "/webhook/" + c.TelegramBotToken
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getEnvRaw keeps an explicitly empty value, which disables optional features.
func getEnvRaw(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
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

func getEnvInt64List(key string) ([]int64, error) {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid id %q", key, part)
		}
		out = append(out, id)
	}
	return out, nil
}
