package config

import (
	"os"
	"strconv"
	"strings"
)

// Config centralizes runtime settings for the API and the analysis worker.
type Config struct {
	Port string

	AuthToken string

	// Legislative document host.
	TeliconBaseURL string
	Session        string

	ResolverProbeTimeoutMS int
	BillFetchTimeoutMS     int
	FiscalFetchTimeoutMS   int

	// Chat-completions summarization backend.
	InferenceURL       string
	InferenceKey       string
	InferenceModelID   string
	InferenceTimeoutMS int
	InferenceRetries   int

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisDLQ      string
	RedisGroup    string
	RedisConsumer string

	CacheTTLSeconds     int
	CacheLockTTLSeconds int
	CacheMemoryMaxEntry int

	// Bills whose HEAD Content-Length exceeds this run async regardless of
	// what the caller asked for. Zero disables the size signal.
	AsyncSizeThresholdBytes int64
	// Escape hatch for documents served without Content-Length: canonical
	// bill numbers ("HB00002") forced onto the worker, comma separated.
	AsyncForcedBills []string

	RateLimitRPS   float64
	RateLimitBurst int

	WorkerEnabled bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		AuthToken: getEnv("API_AUTH_TOKEN", ""),

		TeliconBaseURL: getEnv("TELICON_BASE_URL", "https://www.telicon.com/www/TX"),
		Session:        getEnv("TX_LEGISLATURE_SESSION", "89R"),

		ResolverProbeTimeoutMS: getEnvInt("RESOLVER_PROBE_TIMEOUT_MS", 5000),
		BillFetchTimeoutMS:     getEnvInt("BILL_FETCH_TIMEOUT_MS", 30000),
		FiscalFetchTimeoutMS:   getEnvInt("FISCAL_FETCH_TIMEOUT_MS", 15000),

		InferenceURL:       getEnv("INFERENCE_URL", ""),
		InferenceKey:       getEnv("INFERENCE_KEY", ""),
		InferenceModelID:   getEnv("INFERENCE_MODEL_ID", ""),
		InferenceTimeoutMS: getEnvInt("INFERENCE_TIMEOUT_MS", 120000),
		InferenceRetries:   getEnvInt("INFERENCE_MAX_RETRIES", 2),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "bill_jobs"),
		RedisDLQ:      getEnv("REDIS_DLQ_STREAM", "bill_jobs_dlq"),
		RedisGroup:    getEnv("REDIS_GROUP", "bill_workers"),
		RedisConsumer: getEnv("REDIS_CONSUMER", "api-1"),

		CacheTTLSeconds:     getEnvInt("CACHE_TTL_SECONDS", 86400),
		CacheLockTTLSeconds: getEnvInt("CACHE_LOCK_TTL_SECONDS", 30),
		CacheMemoryMaxEntry: getEnvInt("CACHE_MEMORY_MAX_ENTRIES", 2000),

		AsyncSizeThresholdBytes: int64(getEnvInt("ASYNC_SIZE_THRESHOLD_BYTES", 5*1024*1024)),
		AsyncForcedBills:        getEnvList("ASYNC_FORCED_BILLS", nil),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		WorkerEnabled: getEnvBool("WORKER_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
