package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "swecron/pkg/errors"
)

// Store backends
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Extraction engines
const (
	EngineStatic     = "static"
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
)

// Config represents the application configuration
type Config struct {
	// Paths
	SitesPath    string
	ListingsPath string

	// Listing store
	StoreBackend  string
	DatabaseURL   string
	RetentionDays int

	// Relevance filter
	Keywords []string

	// Extraction
	Engine            string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	SelectorTimeout   time.Duration

	// Pushover
	PushoverToken string
	PushoverUser  string
	PushoverTitle string
	PushoverURL   string

	// Telegram
	TelegramToken  string
	TelegramChatID int64

	// Redis stream notifier
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache site block list
	MemcacheAddr  string
	SiteBlockTime time.Duration

	// Scheduling and metrics
	Schedule       string
	MetricsAddr    string
	PushgatewayURL string

	// Environment
	Environment string

	telegramChatIDRaw string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	telegramChatID := getEnv("TELEGRAM_CHAT_ID", "")
	chatID, _ := strconv.ParseInt(telegramChatID, 10, 64)

	return &Config{
		SitesPath:            getEnv("SITES_PATH", "links.json"),
		ListingsPath:         getEnv("LISTINGS_PATH", "listings.json"),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RetentionDays:        getEnvInt("RETENTION_DAYS", 60),
		Keywords:             splitList(getEnv("KEYWORDS", "intern,grad,early")),
		Engine:               strings.ToLower(getEnv("ENGINE", EnginePlaywright)),
		NavigationTimeout:    getEnvMillis("NAVIGATION_TIMEOUT_MS", 60000),
		SettleDelay:          getEnvMillis("SETTLE_DELAY_MS", 2000),
		SelectorTimeout:      getEnvMillis("SELECTOR_TIMEOUT_MS", 5000),
		PushoverToken:        getEnv("PUSHOVER_TOKEN", ""),
		PushoverUser:         getEnv("PUSHOVER_USER", ""),
		PushoverTitle:        getEnv("PUSHOVER_TITLE", "SWE Cron"),
		PushoverURL:          getEnv("PUSHOVER_API_URL", ""),
		TelegramToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       chatID,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "swecron:postings"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		SiteBlockTime:        time.Duration(getEnvInt("SITE_BLOCK_SECONDS", 600)) * time.Second,
		Schedule:             getEnv("SCHEDULE", ""),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		PushgatewayURL:       getEnv("PUSHGATEWAY_URL", ""),
		Environment:          getEnv("SWECRON_ENVIRONMENT", "development"),
		telegramChatIDRaw:    telegramChatID,
	}
}

// HasPushover reports whether Pushover credentials are configured
func (c *Config) HasPushover() bool {
	return c.PushoverToken != "" && c.PushoverUser != ""
}

// HasTelegram reports whether Telegram credentials are configured
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Validate checks the configuration for fatal problems
func (c *Config) Validate() error {
	if c.telegramChatIDRaw != "" && c.TelegramChatID == 0 {
		return apperrors.NewConfiguration("TELEGRAM_CHAT_ID must be a non-zero integer, got "+strconv.Quote(c.telegramChatIDRaw), nil)
	}

	if !c.HasPushover() && !c.HasTelegram() {
		return apperrors.NewConfiguration("notification credentials not found: set PUSHOVER_TOKEN and PUSHOVER_USER (or TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)", nil)
	}

	switch c.StoreBackend {
	case StoreBackendFile:
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return apperrors.NewConfiguration("DATABASE_URL is required when STORE_BACKEND=postgres", nil)
		}
	default:
		return apperrors.NewConfiguration("unknown STORE_BACKEND "+strconv.Quote(c.StoreBackend), nil)
	}

	switch c.Engine {
	case EngineStatic, EnginePlaywright, EngineChromedp:
	default:
		return apperrors.NewConfiguration("unknown ENGINE "+strconv.Quote(c.Engine), nil)
	}

	if c.NavigationTimeout <= 0 {
		return apperrors.NewConfiguration("NAVIGATION_TIMEOUT_MS must be positive", nil)
	}
	if c.SelectorTimeout <= 0 {
		return apperrors.NewConfiguration("SELECTOR_TIMEOUT_MS must be positive", nil)
	}
	if c.SettleDelay < 0 {
		return apperrors.NewConfiguration("SETTLE_DELAY_MS must not be negative", nil)
	}

	if len(c.Keywords) == 0 {
		return apperrors.NewConfiguration("KEYWORDS must name at least one keyword", nil)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}

// splitList splits a comma separated value, dropping blanks and lowercasing
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
