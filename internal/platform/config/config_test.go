package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"regflow/internal/platform/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "regflow.audit", cfg.AuditTopic)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REGFLOW_ADDR", ":9000")
	t.Setenv("REGFLOW_POSTGRES_DSN", "postgres://localhost/regflow")
	t.Setenv("REGFLOW_KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("REGFLOW_SESSION_TTL", "30m")

	cfg := config.FromEnv()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/regflow", cfg.PostgresDSN)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestFromEnvInvalidTTLFallsBack(t *testing.T) {
	t.Setenv("REGFLOW_SESSION_TTL", "not-a-duration")
	assert.Equal(t, 24*time.Hour, config.FromEnv().SessionTTL)
}
