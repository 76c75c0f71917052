package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"sjsage522/carsearch/pkg/errors"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Config represents the application configuration
type Config struct {
	// Filter catalog configuration
	CatalogDir string

	// Memcache configuration, empty keeps the parse cache in process memory
	MemcacheAddr  string
	ParseCacheTTL time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// LLM call configuration
	LLMTimeout   time.Duration
	LLMMaxTokens int

	// Location defaults applied when a query names none
	DefaultZip    string
	DefaultRadius int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	cacheTTL, _ := strconv.Atoi(getEnv("PARSE_CACHE_TTL_SECONDS", "86400"))
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "60"))
	llmMaxTokens, _ := strconv.Atoi(getEnv("LLM_MAX_TOKENS", "3000"))
	defaultRadius, _ := strconv.Atoi(getEnv("DEFAULT_RADIUS", "500"))

	return &Config{
		CatalogDir:           getEnv("CATALOG_DIR", "data"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		ParseCacheTTL:        time.Duration(cacheTTL) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "vehicle_searches"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		LLMTimeout:           time.Duration(llmTimeout) * time.Second,
		LLMMaxTokens:         llmMaxTokens,
		DefaultZip:           getEnv("DEFAULT_ZIP", "94002"),
		DefaultRadius:        defaultRadius,
		Environment:          getEnv("CARSEARCH_ENVIRONMENT", "development"),
	}
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	if c.RedisStreamMaxLength < 1 {
		return errors.NewConfiguration("REDIS_STREAM_MAX_LENGTH must be at least 1", nil)
	}
	if c.LLMTimeout <= 0 {
		return errors.NewConfiguration("LLM_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.LLMMaxTokens <= 0 {
		return errors.NewConfiguration("LLM_MAX_TOKENS must be positive", nil)
	}
	if c.DefaultRadius <= 0 {
		return errors.NewConfiguration("DEFAULT_RADIUS must be positive", nil)
	}
	if !zipPattern.MatchString(c.DefaultZip) {
		return errors.NewConfiguration("DEFAULT_ZIP must be a 5-digit ZIP code", nil)
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
