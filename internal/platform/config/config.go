package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean.
type Config struct {
	Addr             string
	PostgresDSN      string
	RedisURL         string
	KafkaBrokers     []string
	AuditTopic       string
	FileStorageDir   string
	TokenSigningKey  string
	PaymentStatusURL string
	SessionTTL       time.Duration
}

// FromEnv builds a Config from environment variables with development-safe
// defaults. An empty PostgresDSN or RedisURL selects the in-memory backends.
func FromEnv() Config {
	cfg := Config{
		Addr:             getEnv("REGFLOW_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("REGFLOW_POSTGRES_DSN"),
		RedisURL:         os.Getenv("REGFLOW_REDIS_URL"),
		AuditTopic:       getEnv("REGFLOW_AUDIT_TOPIC", "regflow.audit"),
		FileStorageDir:   getEnv("REGFLOW_FILES_DIR", ""),
		TokenSigningKey:  getEnv("REGFLOW_TOKEN_KEY", "dev-secret-key-change-in-production"),
		PaymentStatusURL: os.Getenv("REGFLOW_PAYMENT_STATUS_URL"),
		SessionTTL:       24 * time.Hour,
	}

	if brokers := os.Getenv("REGFLOW_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if ttl := os.Getenv("REGFLOW_SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
