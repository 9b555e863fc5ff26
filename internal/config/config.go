package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	// Database (local snapshot persistence)
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Remote order/catalog service
	RemoteBaseURL string
	RemoteTimeout time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RemoteRate    float64 // outbound calls per second
	RemoteBurst   int
	SessionSecret string
	SessionTTL    time.Duration

	// Commerce policy
	FreeDeliveryThreshold float64
	StandardDeliveryFee   float64
	PageSize              int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:     os.Getenv("APP_ENV"),
		AppPort:    envOr("APP_PORT", "8080"),
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     envOr("DB_PORT", "5432"),

		RemoteBaseURL: os.Getenv("REMOTE_BASE_URL"),
		RemoteTimeout: envDuration("REMOTE_TIMEOUT", 10*time.Second),
		MaxAttempts:   envInt("REMOTE_MAX_ATTEMPTS", 3),
		RetryBackoff:  envDuration("REMOTE_RETRY_BACKOFF", 200*time.Millisecond),
		RemoteRate:    envFloat("REMOTE_RATE", 20),
		RemoteBurst:   envInt("REMOTE_BURST", 40),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),

		FreeDeliveryThreshold: envFloat("FREE_DELIVERY_THRESHOLD", 500),
		StandardDeliveryFee:   envFloat("STANDARD_DELIVERY_FEE", 50),
		PageSize:              envInt("PAGE_SIZE", 12),
	}

	if cfg.RemoteBaseURL == "" {
		log.Fatal("REMOTE_BASE_URL not set; environment variables not loaded properly")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET not set; environment variables not loaded properly")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("%s must be a number, got %q", key, v)
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s must be a duration like 5s, got %q", key, v)
	}
	return d
}
