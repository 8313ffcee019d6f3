package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), ResultRecord{Kind: KindTurn}))
}

func TestNewRedisPublisherDefaultsQueue(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	assert.Equal(t, DefaultQueueName, NewRedisPublisher(client, "").Queue())
	assert.Equal(t, "custom", NewRedisPublisher(client, "custom").Queue())
}

func TestResultRecordJSON(t *testing.T) {
	rec := ResultRecord{
		GameID:    "g1",
		RoomCode:  "ABC123",
		Kind:      KindGame,
		Round:     3,
		Scores:    map[string]int{"p1": 250},
		Winners:   []string{"p1"},
		Timestamp: 1700000000000,
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"game_id":"g1","room_code":"ABC123","kind":"game","round":3,
		"scores":{"p1":250},"winners":["p1"],"timestamp":1700000000000
	}`, string(data))
}
