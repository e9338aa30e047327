package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	LogLevel    string
	CORSOrigins string

	// Layout key-value storage
	KVDriver    string // mongo | redis | postgres | mysql | sqlite | memory
	RedisURL    string
	PostgresDSN string
	MySQLDSN    string
	SQLitePath  string

	LayoutSessionTTL    time.Duration
	LayoutEvictSchedule string
	// Dashboards that may hold a layout; the overview is always allowed.
	LayoutDashboards []string

	NotificationRetentionDays int
	NotificationPurgeSchedule string
	FeedLimitBell             int
	FeedLimitPage             int

	// Surfaces on which the mention filter also applies to elevated roles.
	MentionFilterSurfaces []string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePrices        map[string]string
	SiteURL             string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-hse"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-hse"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),

		KVDriver:    getEnv("KV_DRIVER", "mongo"),
		RedisURL:    getEnv("REDIS_URL", ""),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		MySQLDSN:    getEnv("MYSQL_DSN", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "layouts.db"),

		LayoutSessionTTL:    getEnvDuration("LAYOUT_SESSION_TTL", 30*time.Minute),
		LayoutEvictSchedule: getEnv("LAYOUT_EVICT_SCHEDULE", "@every 10m"),
		LayoutDashboards:    getEnvList("LAYOUT_DASHBOARDS", "overview"),

		NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 90),
		NotificationPurgeSchedule: getEnv("NOTIFICATION_PURGE_SCHEDULE", "0 3 * * *"),
		FeedLimitBell:             getEnvInt("FEED_LIMIT_BELL", 20),
		FeedLimitPage:             getEnvInt("FEED_LIMIT_PAGE", 200),

		MentionFilterSurfaces: getEnvList("MENTION_FILTER_SURFACES", "dashboard"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePrices: map[string]string{
			"basic":    getEnv("STRIPE_PRICE_BASIC", ""),
			"standard": getEnv("STRIPE_PRICE_STANDARD", ""),
			"premium":  getEnv("STRIPE_PRICE_PREMIUM", ""),
		},
		SiteURL: getEnv("SITE_URL", "http://localhost:5173"),
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EnforcesMentionFilter reports whether the given surface filters tasks for elevated roles too.
func (c *Config) EnforcesMentionFilter(surface string) bool {
	for _, s := range c.MentionFilterSurfaces {
		if s == surface {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
