package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Kafka  KafkaConfig
	Market MarketConfig
}

type AppConfig struct {
	Env             string
	Port            string
	APIKey          string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type DBConfig struct {
	URL string
}

type KafkaConfig struct {
	// Brokers is empty when event publishing is disabled.
	Brokers []string
	Topic   string
}

type MarketConfig struct {
	// DefaultCurrency is used when a message carries no currency token
	// and no provider table matched.
	DefaultCurrency string
}

// Load reads configuration from the environment. A .env file is loaded
// first when present so local runs match deployed behavior.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Env:             getEnv("ENV", "dev"),
			Port:            getEnv("PORT", "8080"),
			APIKey:          strings.TrimSpace(os.Getenv("API_KEY")),
			RateLimitMax:    getEnvInt("RATE_LIMIT_SMS_MAX", 120),
			RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_SMS_WINDOW_SECONDS", 60)) * time.Second,
		},
		DB: DBConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "wallet_credited"),
		},
		Market: MarketConfig{
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "GHS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func splitList(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
