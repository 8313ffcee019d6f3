// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the historian consumes turn and game results from.
const DefaultQueueName = "sketch_results"

// Result kinds.
const (
	KindTurn = "turn"
	KindGame = "game"
)

// ResultRecord is one finished turn or game, as archived by the historian.
type ResultRecord struct {
	GameID     string         `json:"game_id"`
	RoomCode   string         `json:"room_code"`
	Kind       string         `json:"kind"`
	Round      int            `json:"round"`
	Word       string         `json:"word,omitempty"`
	Difficulty string         `json:"difficulty,omitempty"`
	DrawerID   string         `json:"drawer_id,omitempty"`
	Guessers   []string       `json:"guessers,omitempty"`
	Scores     map[string]int `json:"scores"`
	Winners    []string       `json:"winners,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

// Publisher hands result records off to the archive pipeline.
type Publisher interface {
	Publish(ctx context.Context, rec ResultRecord) error
}

// NoopPublisher drops every record. It is used when Redis is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ResultRecord) error { return nil }

// RedisPublisher RPushes JSON-encoded records onto a Redis list.
type RedisPublisher struct {
	client *redis.Client
	queue  string
}

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisPublisher publishes onto queue, falling back to DefaultQueueName.
func NewRedisPublisher(client *redis.Client, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisPublisher{client: client, queue: queue}
}

// Publish serializes the record to JSON, then pushes it to the Redis queue.
func (p *RedisPublisher) Publish(ctx context.Context, rec ResultRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ResultRecord: %w", err)
	}
	if err := p.client.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// Queue returns the list name records are pushed to.
func (p *RedisPublisher) Queue() string {
	return p.queue
}
