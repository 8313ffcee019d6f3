// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sketch/internal/metrics"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// outboxSize bounds how far a client may fall behind before it is dropped.
const outboxSize = 64

// Conn is one client socket's server-side state.
type Conn struct {
	ID      string
	OutChan chan protocol.Outbound

	limiter   *rate.Limiter
	cancel    context.CancelFunc
	closeOnce sync.Once
	slow      atomic.Bool
}

// Close cancels the connection's context exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(c.cancel)
}

// RateLimit configures the per-connection inbound token bucket.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Hub tracks live connections and implements game.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]*Conn
	limit   RateLimit
	logger  *logrus.Logger
	metrics *metrics.Collector
}

func NewHub(logger *logrus.Logger, m *metrics.Collector, limit RateLimit) *Hub {
	return &Hub{
		conns:   make(map[string]*Conn),
		limit:   limit,
		logger:  logger,
		metrics: m,
	}
}

// Register creates a connection bound to cancel.
func (h *Hub) Register(cancel context.CancelFunc) *Conn {
	c := &Conn{
		ID:      uuid.NewString(),
		OutChan: make(chan protocol.Outbound, outboxSize),
		limiter: rate.NewLimiter(rate.Limit(h.limit.PerSecond), h.limit.Burst),
		cancel:  cancel,
	}
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	h.metrics.ConnectionOpened()
	return c
}

// Unregister forgets a connection. Its OutChan is left open; the writer exits on context cancellation.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.conns[c.ID]
	delete(h.conns, c.ID)
	h.mu.Unlock()
	if ok {
		h.metrics.ConnectionClosed()
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send queues msg for connID without blocking. A client whose queue is full
// is disconnected rather than allowed to stall the sender.
func (h *Hub) Send(connID string, msg protocol.Outbound) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case c.OutChan <- msg:
	default:
		if c.slow.CompareAndSwap(false, true) {
			h.logger.WithFields(logrus.Fields{"conn": connID, "type": msg.Type()}).Warn("outbound queue full, dropping connection")
		}
		c.Close()
	}
}
