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
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	JWTTTLHours int

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaSignupTopic string
	KafkaSyncTopic   string

	// Notion content source
	NotionAPIKey     string
	NotionDatabaseID string

	// Google Calendar mirrors
	GoogleServiceAccountKey string // path to the service account JSON, or the JSON itself
	CalendarSummaryPrefix   string
	CalendarTimezone        string

	// Sync scheduling
	NotionSyncSpec    string // cron spec for content -> store reconciliation
	CalendarSyncSpec  string // cron spec for store -> mirror propagation
	SyncWorkers       int
	ExternalCallLimit time.Duration // per-call timeout for Notion/Calendar requests

	// SMTP
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
	AdminEmail    string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	jwtTTL, _ := strconv.Atoi(os.Getenv("JWT_TTL_HOURS"))
	if jwtTTL == 0 {
		jwtTTL = 24
	}
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	workers, _ := strconv.Atoi(os.Getenv("SYNC_WORKERS"))
	if workers <= 0 {
		workers = 4
	}

	callTimeout := 30 * time.Second
	if secs, _ := strconv.Atoi(os.Getenv("EXTERNAL_CALL_TIMEOUT_SECONDS")); secs > 0 {
		callTimeout = time.Duration(secs) * time.Second
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: jwtTTL,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:     splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaSignupTopic: getEnv("KAFKA_SIGNUP_TOPIC", "activity-signups"),
		KafkaSyncTopic:   getEnv("KAFKA_SYNC_TOPIC", "activity-sync-runs"),

		NotionAPIKey:     os.Getenv("NOTION_API_KEY"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),

		GoogleServiceAccountKey: os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		CalendarSummaryPrefix:   getEnv("CALENDAR_SUMMARY_PREFIX", "NEIIST"),
		CalendarTimezone:        getEnv("CALENDAR_TIMEZONE", "Europe/Lisbon"),

		NotionSyncSpec:    getEnv("NOTION_SYNC_CRON", "@every 15m"),
		CalendarSyncSpec:  getEnv("CALENDAR_SYNC_CRON", "@every 1h"),
		SyncWorkers:       workers,
		ExternalCallLimit: callTimeout,

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
