package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_TYPE", "HTTP_ADDR", "REDIS_ADDR", "SCHEDULER_INTERVAL", "SCHEDULER_ENABLED", "NODE_ID"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(1), cfg.NodeID)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "solarflow.changed", cfg.Redis.EventsChannel)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("REDIS_ADDR", " redis:6379 ")
	t.Setenv("SCHEDULER_INTERVAL", "15m")
	t.Setenv("SCHEDULER_ENABLED", "off")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBType)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SF_TEST_BOOL", "yes")
	t.Setenv("SF_TEST_FLOAT", "0.25")
	t.Setenv("SF_TEST_BAD_FLOAT", "quarter")
	t.Setenv("SF_TEST_BLANK", "   ")

	assert.True(t, GetenvBool("SF_TEST_BOOL", false))
	assert.Equal(t, 0.25, GetenvFloat("SF_TEST_FLOAT", 1))
	assert.Equal(t, 1.0, GetenvFloat("SF_TEST_BAD_FLOAT", 1))
	assert.Equal(t, "fallback", Getenv("SF_TEST_BLANK", "fallback"))
}
