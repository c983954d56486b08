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
	Port                 string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	GoogleClientID       string
	GoogleClientSecret   string
	FrontendURL          string
	MongoDBURI           string
	MongoDBDatabase      string

	// Statistics engine knobs. StudentDomains marks a message as
	// student-related whenever one of these appears in From/To.
	StudentDomains      []string
	StatsPageCap        int64
	StatsMaxConcurrency int
	StatsProviderRPS    int
	StatsBackoff        time.Duration
	StatsRequestTimeout time.Duration
	ThreadDefaultLimit  int64
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	accessExp, _ := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION", "15m"))
	refreshExp, _ := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRATION", "168h"))
	backoff, _ := time.ParseDuration(getEnv("STATS_BACKOFF", "2s"))
	reqTimeout, _ := time.ParseDuration(getEnv("STATS_REQUEST_TIMEOUT", "30s"))

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiration:  accessExp,
		JWTRefreshExpiration: refreshExp,
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		MongoDBURI:           getEnv("MONGODB_URI", ""),
		MongoDBDatabase:      getEnv("MONGODB_DATABASE", "studentdash"),
		StudentDomains:       getEnvList("STUDENT_DOMAINS", ""),
		StatsPageCap:         int64(getEnvInt("STATS_PAGE_CAP", 500)),
		StatsMaxConcurrency:  getEnvInt("STATS_MAX_CONCURRENCY", 8),
		StatsProviderRPS:     getEnvInt("STATS_PROVIDER_RPS", 10),
		StatsBackoff:         backoff,
		StatsRequestTimeout:  reqTimeout,
		ThreadDefaultLimit:   int64(getEnvInt("THREAD_DEFAULT_LIMIT", 5)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvList parses a comma-separated env var, dropping blank entries.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
