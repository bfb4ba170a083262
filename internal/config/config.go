package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidMaxRetries    = errors.New("SEARCH_MAX_RETRIES must be between 1 and 10")
	ErrInvalidBackoffGrowth = errors.New("SEARCH_BACKOFF_GROWTH must be >= 1")
)

type Config struct {
	Server     ServerConfig
	Amazon     AmazonConfig
	Rainforest RainforestConfig
	Log        LogConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Search     SearchConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type AmazonConfig struct {
	AccessKey   string
	SecretKey   string
	PartnerTag  string
	Host        string
	Region      string
	Marketplace string
}

func (c AmazonConfig) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.PartnerTag != ""
}

type RainforestConfig struct {
	APIKey       string
	BaseURL      string
	AmazonDomain string
}

func (c RainforestConfig) Configured() bool {
	return c.APIKey != ""
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	MinInterval time.Duration
}

type SearchConfig struct {
	PageSize        int
	PageDelay       time.Duration
	TotalTimeout    time.Duration
	UpstreamTimeout time.Duration
	MaxRetries      int
	InitialBackoff  time.Duration
	BackoffGrowth   float64
	MaxJitter       time.Duration
}

// Load читает конфигурацию из окружения. Креды провайдеров не
// обязательны на старте: их отсутствие репортит health-проба, а
// запрос к ненастроенному провайдеру падает с ConfigurationError.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnvOrDefault("HOST", "0.0.0.0"),
			Port: getEnvOrDefault("PORT", "8000"),
		},
		Amazon: AmazonConfig{
			AccessKey:   os.Getenv("AMAZON_ACCESS_KEY"),
			SecretKey:   os.Getenv("AMAZON_SECRET_KEY"),
			PartnerTag:  os.Getenv("AMAZON_PARTNER_TAG"),
			Host:        getEnvOrDefault("AMAZON_HOST", "webservices.amazon.com"),
			Region:      getEnvOrDefault("AMAZON_REGION", "us-east-1"),
			Marketplace: getEnvOrDefault("AMAZON_MARKETPLACE", "www.amazon.com"),
		},
		Rainforest: RainforestConfig{
			APIKey:       os.Getenv("RAINFOREST_API_KEY"),
			BaseURL:      getEnvOrDefault("RAINFOREST_BASE_URL", "https://api.rainforestapi.com"),
			AmazonDomain: getEnvOrDefault("AMAZON_DOMAIN", "amazon.com"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 180)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			MinInterval: time.Duration(getEnvIntOrDefault("MIN_CALL_INTERVAL_MS", 1100)) * time.Millisecond,
		},
		Search: SearchConfig{
			PageSize:        getEnvIntOrDefault("SEARCH_PAGE_SIZE", 10),
			PageDelay:       time.Duration(getEnvIntOrDefault("SEARCH_PAGE_DELAY_MS", 200)) * time.Millisecond,
			TotalTimeout:    time.Duration(getEnvIntOrDefault("SEARCH_TOTAL_TIMEOUT_SEC", 60)) * time.Second,
			UpstreamTimeout: time.Duration(getEnvIntOrDefault("SEARCH_UPSTREAM_TIMEOUT_SEC", 15)) * time.Second,
			MaxRetries:      getEnvIntOrDefault("SEARCH_MAX_RETRIES", 5),
			InitialBackoff:  time.Duration(getEnvIntOrDefault("SEARCH_INITIAL_BACKOFF_MS", 1200)) * time.Millisecond,
			BackoffGrowth:   getEnvFloatOrDefault("SEARCH_BACKOFF_GROWTH", 1.7),
			MaxJitter:       time.Duration(getEnvIntOrDefault("SEARCH_MAX_JITTER_MS", 300)) * time.Millisecond,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Search.MaxRetries < 1 || c.Search.MaxRetries > 10 {
		return ErrInvalidMaxRetries
	}
	if c.Search.BackoffGrowth < 1 {
		return ErrInvalidBackoffGrowth
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
