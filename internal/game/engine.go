// internal/game/engine.go
package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/jason-s-yu/sketch/internal/metrics"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/jason-s-yu/sketch/internal/room"
	"github.com/jason-s-yu/sketch/internal/words"
	"github.com/sirupsen/logrus"
)

// Phase durations.
const (
	StartDelay       = 2 * time.Second
	SelectionTimeout = 15 * time.Second
	RevealDelay      = 1 * time.Second
	InterTurnDelay   = 5 * time.Second
	EarlyEndDelay    = 2 * time.Second

	publishTimeout = 3 * time.Second
)

// Broadcaster delivers an outbound message to one connection.
// Implementations must not block; the engine calls it while holding its lock.
type Broadcaster interface {
	Send(connID string, msg protocol.Outbound)
}

// Config carries the Engine's collaborators. Only Registry, Bank and Broadcaster are required.
type Config struct {
	Registry    *room.Registry
	Bank        *words.Bank
	Broadcaster Broadcaster
	Clock       Clock
	Publisher   cache.Publisher
	Metrics     *metrics.Collector
	Logger      *logrus.Logger
}

// Engine owns every room's state machine. A single mutex serializes all
// mutations, whether they come from a client message or a timer.
type Engine struct {
	mu sync.Mutex

	rooms   *room.Registry
	bank    *words.Bank
	out     Broadcaster
	clock   Clock
	pub     cache.Publisher
	metrics *metrics.Collector
	log     *logrus.Logger

	// spawn runs background work such as result publishing.
	spawn func(func())
	// pick chooses an index in [0, n) for auto-selection.
	pick func(n int) int
}

// NewEngine wires an Engine, filling optional collaborators with defaults.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		rooms:   cfg.Registry,
		bank:    cfg.Bank,
		out:     cfg.Broadcaster,
		clock:   cfg.Clock,
		pub:     cfg.Publisher,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
		spawn:   func(f func()) { go f() },
		pick:    rand.Intn,
	}
	if e.clock == nil {
		e.clock = RealClock()
	}
	if e.pub == nil {
		e.pub = cache.NoopPublisher{}
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	return e
}

// Rooms lists live rooms. Summaries read game state, so they are taken
// under the engine lock like every other room access.
func (e *Engine) Rooms() []room.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rooms.Snapshot()
}

// member resolves the room and player bound to a connection.
func (e *Engine) member(connID string) (*models.Room, *models.Player, error) {
	rm, p := e.rooms.FindByConn(connID)
	if rm == nil {
		return nil, nil, models.ErrNotInRoom
	}
	return rm, p, nil
}

func (e *Engine) roomLog(rm *models.Room) *logrus.Entry {
	return e.log.WithFields(logrus.Fields{
		"room":  rm.Code,
		"phase": rm.Game.Phase,
		"round": rm.Game.Round,
	})
}

// send delivers msg to a single player.
func (e *Engine) send(p *models.Player, msg protocol.Outbound) {
	if p == nil || p.ConnID == "" {
		return
	}
	e.out.Send(p.ConnID, msg)
}

// broadcast delivers msg to every member of rm except the given player ids.
func (e *Engine) broadcast(rm *models.Room, msg protocol.Outbound, excludeIDs ...string) {
	for _, p := range rm.Players {
		if contains(excludeIDs, p.ID) {
			continue
		}
		e.send(p, msg)
	}
}

// schedule installs fn as the room's only pending timer. Whatever was pending
// is cancelled first. The callback is dropped if the room has been destroyed,
// its game state replaced, or another timer installed in the meantime.
func (e *Engine) schedule(rm *models.Room, d time.Duration, selection bool, fn func(*models.Room)) {
	gs := rm.Game
	gs.CancelTimers()
	epoch := gs.Epoch

	t := e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.rooms.Alive(rm) || rm.Game != gs || gs.Epoch != epoch {
			e.log.WithField("room", rm.Code).Debug("stale timer ignored")
			return
		}
		fn(rm)
	})
	if selection {
		gs.SelectionTimer = t
	} else {
		gs.TurnTimer = t
	}
}

// publish hands a result record to the publisher without blocking the caller.
func (e *Engine) publish(rec cache.ResultRecord) {
	pub, logger := e.pub, e.log
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, rec); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"room": rec.RoomCode,
				"kind": rec.Kind,
			}).Warn("failed to publish result")
		}
	})
}

func scores(rm *models.Room) map[string]int {
	out := make(map[string]int, len(rm.Players))
	for _, p := range rm.Players {
		out[p.ID] = p.Score
	}
	return out
}

// winners returns every player sharing the top score.
func winners(rm *models.Room) []string {
	best := -1
	var ids []string
	for _, p := range rm.Players {
		switch {
		case p.Score > best:
			best = p.Score
			ids = []string{p.ID}
		case p.Score == best:
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// mask hides every character of word except spaces.
func mask(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r == ' ' {
			b.WriteRune(' ')
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
