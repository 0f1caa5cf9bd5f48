package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the crewdeck server
type Config struct {
	Environment string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DatabaseHost     string `mapstructure:"PG_HOST"`
	DatabasePort     string `mapstructure:"PG_PORT"`
	DatabaseUser     string `mapstructure:"PG_USER"`
	DatabasePassword string `mapstructure:"PG_PASSWORD"`
	DatabaseName     string `mapstructure:"PG_DB"`
	DatabaseSSLMode  string `mapstructure:"PG_SSL_MODE"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`
	JWTIssuer string `mapstructure:"JWT_ISSUER"`

	// CORS configuration
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// Realtime change feed: memory, redis or nats
	RealtimeDriver string `mapstructure:"REALTIME_DRIVER"`
	RedisHost      string `mapstructure:"REDIS_HOST"`
	RedisPort      string `mapstructure:"REDIS_PORT"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	NATSURL        string `mapstructure:"NATS_URL"`

	// Object storage: memory or minio
	StorageDriver        string `mapstructure:"STORAGE_DRIVER"`
	MinioEndpoint        string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey       string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey       string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL          bool   `mapstructure:"MINIO_USE_SSL"`
	StoragePublicBaseURL string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`

	// Cache and polling
	PollInterval   time.Duration `mapstructure:"POLL_INTERVAL"`
	CacheGCTime    time.Duration `mapstructure:"CACHE_GC_TIME"`
	ReadRetryDelay time.Duration `mapstructure:"READ_RETRY_DELAY"`

	// Rate limiting, requests per second and burst per client IP
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

// Load reads configuration from environment variables and an optional config file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// ALLOWED_ORIGINS from the environment arrives as one comma separated string
	if len(cfg.AllowedOrigins) == 1 && strings.Contains(cfg.AllowedOrigins[0], ",") {
		cfg.AllowedOrigins = splitAndTrim(cfg.AllowedOrigins[0])
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL(&cfg)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", "5432")
	v.SetDefault("PG_USER", "crewdeck")
	v.SetDefault("PG_PASSWORD", "crewdeck")
	v.SetDefault("PG_DB", "crewdeck")
	v.SetDefault("PG_SSL_MODE", "disable")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "crewdeck")

	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	v.SetDefault("REALTIME_DRIVER", "memory")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NATS_URL", "nats://localhost:4222")

	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:9000")

	v.SetDefault("POLL_INTERVAL", 5*time.Minute)
	v.SetDefault("CACHE_GC_TIME", 5*time.Minute)
	v.SetDefault("READ_RETRY_DELAY", time.Second)

	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

func buildDatabaseURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseHost,
		cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseSSLMode)
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.RealtimeDriver {
	case "memory", "redis", "nats":
	default:
		return fmt.Errorf("REALTIME_DRIVER must be memory, redis or nats, got %q", cfg.RealtimeDriver)
	}
	switch cfg.StorageDriver {
	case "memory":
	case "minio":
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be memory or minio, got %q", cfg.StorageDriver)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
