// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/metrics"
	"github.com/jason-s-yu/sketch/internal/middleware"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/sirupsen/logrus"
)

const (
	// Subprotocol is optional; clients that request subprotocols must include it.
	Subprotocol = "sketch"

	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
	readLimit    = 64 << 10
)

// RoomWSHandler upgrades a request to the game socket and runs it until the client goes away.
func RoomWSHandler(logger *logrus.Logger, engine *game.Engine, hub *Hub, m *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if r.Header.Get("Sec-WebSocket-Protocol") != "" && c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the sketch subprotocol")
			return
		}
		c.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		conn := hub.Register(cancel)
		defer conn.Close()

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, conn.ID)
		hub.Send(conn.ID, protocol.ConnectionEstablished{ConnectionID: conn.ID})

		go writePump(ctx, c, conn, logger)
		err = readPump(ctx, c, conn, engine, hub, m, logger)

		// Cleanup runs once per socket, whichever side ended it.
		engine.Disconnect(conn.ID)
		hub.Unregister(conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, conn.ID, err)

		if conn.slow.Load() {
			c.Close(SlowConsumerError, "client too slow")
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump processes inbound frames strictly in arrival order.
func readPump(ctx context.Context, c *websocket.Conn, conn *Conn, engine *game.Engine, hub *Hub, m *metrics.Collector, logger *logrus.Logger) error {
	log := logger.WithField("conn", conn.ID)
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Warnf("ignoring non-text frame of type %d", typ)
			continue
		}
		if !conn.limiter.Allow() {
			reply(hub, m, conn, models.Errorf(models.CodeRateLimited, "slow down"))
			continue
		}
		handleFrame(data, conn, engine, hub, m, log)
	}
}

// handleFrame decodes and dispatches one frame. A panic is confined to this
// frame and reported to the sender as Internal.
func handleFrame(data []byte, conn *Conn, engine *game.Engine, hub *Hub, m *metrics.Collector, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("handler panicked")
			reply(hub, m, conn, models.Errorf(models.CodeInternal, "internal server error"))
		}
	}()

	msg, err := protocol.Decode(data)
	if err != nil {
		reply(hub, m, conn, err)
		return
	}
	m.MessageReceived(msg.Type())

	if err := dispatch(engine, conn.ID, msg); err != nil {
		log.WithFields(logrus.Fields{"type": msg.Type(), "error": err}).Debug("request rejected")
		reply(hub, m, conn, err)
	}
}

// dispatch routes a decoded message to the engine. The switch covers every inbound variant.
func dispatch(engine *game.Engine, connID string, msg protocol.Inbound) error {
	switch m := msg.(type) {
	case protocol.CreateRoom:
		return engine.CreateRoom(connID, m.PlayerName)
	case protocol.JoinRoom:
		return engine.JoinRoom(connID, m.RoomCode, m.PlayerName)
	case protocol.StartGame:
		return engine.StartGame(connID)
	case protocol.UpdateSettings:
		return engine.UpdateSettings(connID, m.Settings)
	case protocol.SelectWord:
		return engine.SelectWord(connID, m.Word)
	case protocol.DrawData:
		return engine.DrawData(connID, m.Data)
	case protocol.ClearCanvas:
		return engine.ClearCanvas(connID)
	case protocol.Chat:
		return engine.Chat(connID, m.Message)
	case protocol.ResetGame:
		return engine.ResetGame(connID)
	default:
		panic(fmt.Sprintf("unhandled inbound message %T", msg))
	}
}

func reply(hub *Hub, m *metrics.Collector, conn *Conn, err error) {
	e := protocol.ErrorFrom(err)
	m.ErrorSent(string(e.Code))
	hub.Send(conn.ID, e)
}

// writePump drains the connection's queue and keeps it alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	log := logger.WithField("conn", conn.ID)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.OutChan:
			data, err := protocol.Encode(msg)
			if err != nil {
				log.Warnf("failed to marshal outgoing %s: %v", msg.Type(), err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Warnf("failed to write to websocket: %v", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				log.Warnf("failed to send ping: %v. Assuming disconnect.", err)
				conn.Close()
				return
			}
		}
	}
}
