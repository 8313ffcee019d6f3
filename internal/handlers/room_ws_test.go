package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/jason-s-yu/sketch/internal/room"
	"github.com/jason-s-yu/sketch/internal/words"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv    *httptest.Server
	engine *game.Engine
	hub    *Hub
}

func newTestServer(t *testing.T, limit RateLimit) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bank, err := words.NewBank(words.Defaults())
	require.NoError(t, err)

	hub := NewHub(logger, nil, limit)
	engine := game.NewEngine(game.Config{
		Registry:    room.NewRegistry(),
		Bank:        bank,
		Broadcaster: hub,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", RoomWSHandler(logger, engine, hub, nil))
	mux.Handle("/health", HealthHandler(engine, hub))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, engine: engine, hub: hub}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })

	env := readUntil(t, c, protocol.TypeConnectionEstablished)
	var ce protocol.ConnectionEstablished
	require.NoError(t, json.Unmarshal(env.Payload, &ce))
	require.NotEmpty(t, ce.ConnectionID)
	return c
}

func send(t *testing.T, c *websocket.Conn, raw string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(raw)))
}

// readUntil returns the first envelope of the wanted type, skipping others.
func readUntil(t *testing.T, c *websocket.Conn, msgType string) protocol.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err, "waiting for %s", msgType)
		var env protocol.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type == msgType {
			return env
		}
	}
}

func readError(t *testing.T, c *websocket.Conn) protocol.Error {
	t.Helper()
	env := readUntil(t, c, protocol.TypeError)
	var e protocol.Error
	require.NoError(t, json.Unmarshal(env.Payload, &e))
	return e
}

func TestCreateAndJoinOverWebSocket(t *testing.T) {
	ts := newTestServer(t, RateLimit{PerSecond: 100, Burst: 100})
	alice := ts.dial(t)
	bob := ts.dial(t)

	send(t, alice, `{"type":"create-room","payload":{"playerName":"alice"}}`)
	env := readUntil(t, alice, protocol.TypeRoomCreated)
	var created protocol.RoomCreated
	require.NoError(t, json.Unmarshal(env.Payload, &created))
	require.Len(t, created.RoomCode, 6)

	send(t, bob, `{"type":"join-room","payload":{"roomId":"`+strings.ToLower(created.RoomCode)+`","playerName":"bob"}}`)
	env = readUntil(t, bob, protocol.TypeRoomJoined)
	var joined protocol.RoomJoined
	require.NoError(t, json.Unmarshal(env.Payload, &joined))
	assert.Equal(t, created.PlayerID, joined.OwnerID)
	assert.Len(t, joined.Players, 2)

	env = readUntil(t, alice, protocol.TypePlayerJoined)
	var pj protocol.PlayerJoined
	require.NoError(t, json.Unmarshal(env.Payload, &pj))
	assert.Equal(t, "bob", pj.PlayerName)

	// Chat reaches both members.
	send(t, bob, `{"type":"chat-message","payload":{"message":"hi all","playerId":"spoofed"}}`)
	for _, c := range []*websocket.Conn{alice, bob} {
		env = readUntil(t, c, protocol.TypeChatMessage)
		var cm protocol.ChatMessage
		require.NoError(t, json.Unmarshal(env.Payload, &cm))
		assert.Equal(t, "hi all", cm.Message)
		assert.Equal(t, joined.PlayerID, cm.PlayerID)
	}

	// Non-owner cannot start.
	send(t, bob, `{"type":"start-game"}`)
	assert.Equal(t, models.CodeNotAuthorized, readError(t, bob).Code)

	// Bob leaves; alice learns about it.
	bob.Close(websocket.StatusNormalClosure, "bye")
	env = readUntil(t, alice, protocol.TypePlayerLeft)
	var pl protocol.PlayerLeft
	require.NoError(t, json.Unmarshal(env.Payload, &pl))
	assert.Equal(t, joined.PlayerID, pl.PlayerID)
	assert.False(t, pl.OwnerChanged)
}

func TestProtocolErrors(t *testing.T) {
	ts := newTestServer(t, RateLimit{PerSecond: 100, Burst: 100})
	c := ts.dial(t)

	send(t, c, `not json`)
	assert.Equal(t, models.CodeMalformedMessage, readError(t, c).Code)

	send(t, c, `{"type":"teleport","payload":{}}`)
	assert.Equal(t, models.CodeUnknownMessageType, readError(t, c).Code)

	send(t, c, `{"type":"chat-message","payload":{"message":"anyone?"}}`)
	assert.Equal(t, models.CodeNotInRoom, readError(t, c).Code)

	send(t, c, `{"type":"join-room","payload":{"roomId":"ZZZZZZ","playerName":"x"}}`)
	assert.Equal(t, models.CodeRoomNotFound, readError(t, c).Code)

	// The connection survives every error.
	send(t, c, `{"type":"create-room","payload":{"playerName":"still here"}}`)
	readUntil(t, c, protocol.TypeRoomCreated)
}

func TestRateLimitedMessagesAreRejected(t *testing.T) {
	ts := newTestServer(t, RateLimit{PerSecond: 0.001, Burst: 1})
	c := ts.dial(t)

	send(t, c, `{"type":"create-room","payload":{"playerName":"alice"}}`)
	readUntil(t, c, protocol.TypeRoomCreated)

	send(t, c, `{"type":"chat-message","payload":{"message":"spam"}}`)
	assert.Equal(t, models.CodeRateLimited, readError(t, c).Code)
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t, RateLimit{PerSecond: 100, Burst: 100})
	c := ts.dial(t)
	send(t, c, `{"type":"create-room","payload":{"playerName":"alice"}}`)
	readUntil(t, c, protocol.TypeRoomCreated)

	resp, err := http.Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["rooms"])
	assert.Equal(t, 1.0, body["players"])
	assert.Equal(t, 1.0, body["connections"])
}

func TestDispatchPanicsOnUnknownVariant(t *testing.T) {
	assert.Panics(t, func() {
		_ = dispatch(nil, "c", nil)
	})
}

func TestHubDropsSlowConsumer(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(logger, nil, RateLimit{PerSecond: 1, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := hub.Register(cancel)
	for i := 0; i < outboxSize; i++ {
		hub.Send(conn.ID, protocol.ClearRelay{})
	}
	require.NoError(t, ctx.Err())

	hub.Send(conn.ID, protocol.ClearRelay{})
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, conn.slow.Load())

	hub.Unregister(conn)
	assert.Zero(t, hub.Len())
	hub.Send(conn.ID, protocol.ClearRelay{})
}

func TestOwnerSocketCloseHandsRoomToPeer(t *testing.T) {
	ts := newTestServer(t, RateLimit{PerSecond: 100, Burst: 100})
	alice := ts.dial(t)
	bob := ts.dial(t)
	require.Eventually(t, func() bool { return ts.hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	send(t, alice, `{"type":"create-room","payload":{"playerName":"alice"}}`)
	var created protocol.RoomCreated
	require.NoError(t, json.Unmarshal(readUntil(t, alice, protocol.TypeRoomCreated).Payload, &created))
	send(t, bob, `{"type":"join-room","payload":{"roomId":"`+created.RoomCode+`","playerName":"bob"}}`)
	var joined protocol.RoomJoined
	require.NoError(t, json.Unmarshal(readUntil(t, bob, protocol.TypeRoomJoined).Payload, &joined))

	alice.Close(websocket.StatusNormalClosure, "bye")

	var left protocol.PlayerLeft
	require.NoError(t, json.Unmarshal(readUntil(t, bob, protocol.TypePlayerLeft).Payload, &left))
	assert.Equal(t, created.PlayerID, left.PlayerID)
	assert.True(t, left.OwnerChanged)
	assert.Equal(t, joined.PlayerID, left.OwnerID)
	require.Len(t, left.Players, 1)

	require.Eventually(t, func() bool { return ts.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	rooms := ts.engine.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].Players)

	// Cleanup runs once: no second departure notice follows.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	for {
		_, data, err := bob.Read(ctx)
		if err != nil {
			break
		}
		var env protocol.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.NotEqual(t, protocol.TypePlayerLeft, env.Type)
	}
}
