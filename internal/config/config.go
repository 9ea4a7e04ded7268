package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Filter modes for listing New projects.
const (
	FilterFormula = "formula"
	FilterClient  = "client"
)

// openAIPlaceholderKey is the value shipped in sample env files; treat it as unset.
const openAIPlaceholderKey = "your-openai-key-here"

// Config holds shared runtime configuration for the API and worker services.
type Config struct {
	Env         string
	HTTPPort    string
	MetricsAddr string
	LogLevel    string
	LogFormat   string

	AirtableToken     string
	AirtableBaseID    string
	AirtableAPIURL    string
	AirtableFilter    string
	AirtableRateLimit float64

	OpenAIAPIKey    string
	OpenAIAPIURL    string
	OpenAIModel     string
	OpenAIMaxTokens int

	PollInterval      time.Duration
	HTTPClientTimeout time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RateLimitCapacity int
	RateLimitRefill   float64

	PostgresDSN string

	ArchiveDir         string
	ArchiveS3Bucket    string
	ArchiveS3Region    string
	ArchiveS3Endpoint  string
	ArchiveS3PathStyle bool
}

// Load reads configuration from environment variables with sane defaults for local development.
func Load() Config {
	return Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPPort:           getEnv("PORT", "5000"),
		MetricsAddr:        getEnv("METRICS_ADDR", ":9090"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		AirtableToken:      getEnv("AIRTABLE_ACCESS_TOKEN", ""),
		AirtableBaseID:     getEnv("AIRTABLE_BASE_ID", ""),
		AirtableAPIURL:     getEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		AirtableFilter:     getEnvChoice("AIRTABLE_FILTER", FilterFormula, FilterFormula, FilterClient),
		AirtableRateLimit:  getEnvFloat("AIRTABLE_RATE_LIMIT", 5),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:       getEnv("OPENAI_API_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIMaxTokens:    getEnvInt("OPENAI_MAX_TOKENS", 150),
		PollInterval:       getEnvDuration("POLL_INTERVAL", 60*time.Second),
		HTTPClientTimeout:  getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RateLimitCapacity:  getEnvInt("RATE_LIMIT_CAPACITY", 20),
		RateLimitRefill:    getEnvFloat("RATE_LIMIT_REFILL_PER_SEC", 1),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		ArchiveDir:         getEnv("ARCHIVE_DIR", ""),
		ArchiveS3Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchiveS3Region:    getEnv("ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Endpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
		ArchiveS3PathStyle: getEnvBool("ARCHIVE_S3_PATH_STYLE", false),
	}
}

// AIEnabled reports whether a usable completion-service key is configured.
func (c Config) AIEnabled() bool {
	key := strings.TrimSpace(c.OpenAIAPIKey)
	return key != "" && key != openAIPlaceholderKey
}

// ArchiveEnabled reports whether completed lead batches should be archived.
func (c Config) ArchiveEnabled() bool {
	return c.ArchiveDir != "" || c.ArchiveS3Bucket != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvChoice(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
