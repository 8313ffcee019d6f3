// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is read once from the environment at startup. A .env file is loaded
// beforehand by godotenv/autoload in each binary.
type Config struct {
	Port     string
	LogLevel logrus.Level
	WordsDir string

	RedisAddr string
	RedisDB   int
	QueueName string

	DatabaseURL    string
	HistorianBatch int
	HistorianFlush time.Duration

	WSRatePerSec float64
	WSRateBurst  int
}

// Load reads every setting, falling back to defaults for unset or unparsable values.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	return Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       level,
		WordsDir:       os.Getenv("WORDS_DIR"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		QueueName:      getEnv("HISTORIAN_QUEUE_NAME", "sketch_results"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HistorianBatch: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush: getEnvDuration("HISTORIAN_FLUSH_MS", 500*time.Millisecond),
		WSRatePerSec:   getEnvFloat("WS_RATE_PER_SEC", 30),
		WSRateBurst:    getEnvInt("WS_RATE_BURST", 60),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	return logger
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, def time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
