package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "WORDS_DIR", "REDIS_ADDR", "REDIS_DB", "HISTORIAN_QUEUE_NAME",
		"DATABASE_URL", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS", "WS_RATE_PER_SEC", "WS_RATE_BURST",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.WordsDir)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "sketch_results", cfg.QueueName)
	assert.Equal(t, 20, cfg.HistorianBatch)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlush)
	assert.Equal(t, 30.0, cfg.WSRatePerSec)
	assert.Equal(t, 60, cfg.WSRateBurst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("HISTORIAN_FLUSH_MS", "250")
	t.Setenv("WS_RATE_PER_SEC", "5.5")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 250*time.Millisecond, cfg.HistorianFlush)
	assert.Equal(t, 5.5, cfg.WSRatePerSec)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("WS_RATE_PER_SEC", "-1")

	cfg := Load()
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 30.0, cfg.WSRatePerSec)
}
