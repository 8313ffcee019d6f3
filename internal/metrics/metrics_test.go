package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()

	c.SetRooms(3)
	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.MessageReceived("chat-message")
	c.MessageReceived("chat-message")
	c.ErrorSent("RoomFull")
	c.CorrectGuess()
	c.GameFinished("completed")

	assert.Equal(t, 3.0, testutil.ToFloat64(c.rooms))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connections))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.messages.WithLabelValues("chat-message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("RoomFull")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.correctGuesses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gamesFinished.WithLabelValues("completed")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.SetRooms(1)
		c.ConnectionOpened()
		c.ConnectionClosed()
		c.MessageReceived("x")
		c.ErrorSent("y")
		c.CorrectGuess()
		c.GameFinished("completed")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.SetRooms(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sketch_rooms_active 2")
}
