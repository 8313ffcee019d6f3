// internal/room/registry.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sketch/internal/models"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Registry is the in-memory store of live rooms keyed by code.
// It never sends network messages; callers broadcast the resulting state.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room

	// NewCode and NewID are swappable for tests.
	NewCode func() string
	NewID   func() string
}

// LeaveResult describes what a departure did to its room.
type LeaveResult struct {
	Room         *models.Room
	Player       *models.Player
	Destroyed    bool
	OwnerChanged bool
	WasDrawer    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rngMu sync.Mutex
	return &Registry{
		rooms: make(map[string]*models.Room),
		NewCode: func() string {
			rngMu.Lock()
			defer rngMu.Unlock()
			b := make([]byte, codeLength)
			for i := range b {
				b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
			}
			return string(b)
		},
		NewID: func() string { return uuid.NewString() },
	}
}

// Create opens a room owned by a new player. The code is regenerated until it is unused.
func (r *Registry) Create(playerName, connID string) (*models.Room, *models.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.NewCode()
	for r.rooms[code] != nil {
		code = r.NewCode()
	}
	p := &models.Player{ID: r.NewID(), Name: playerName, ConnID: connID}
	settings := models.DefaultSettings()
	rm := &models.Room{
		Code:     code,
		OwnerID:  p.ID,
		Players:  []*models.Player{p},
		Settings: settings,
		Game:     models.NewGameState(models.PhaseIdle, settings.Rounds),
	}
	r.rooms[code] = rm
	return rm, p
}

// Join appends a new player to an existing room.
func (r *Registry) Join(code, playerName, connID string) (*models.Room, *models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil, nil, models.ErrRoomNotFound
	}
	if !rm.Game.Phase.Joinable() {
		return nil, nil, models.ErrGameInProgress
	}
	if len(rm.Players) >= models.MaxPlayers {
		return nil, nil, models.ErrRoomFull
	}
	if rm.HasName(playerName) {
		return nil, nil, models.ErrNameTaken
	}
	p := &models.Player{ID: r.NewID(), Name: playerName, ConnID: connID}
	rm.Players = append(rm.Players, p)
	if rm.Game.Phase == models.PhaseIdle {
		rm.Game.Phase = models.PhaseLobby
	}
	return rm, p, nil
}

// Leave removes a player. An emptied room is destroyed and its timers cancelled;
// otherwise ownership moves to the first remaining player if needed.
// Ending an interrupted turn is left to the caller.
func (r *Registry) Leave(code, playerID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return LeaveResult{}, models.ErrRoomNotFound
	}
	idx := -1
	for i, p := range rm.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return LeaveResult{}, models.ErrNotInRoom
	}

	res := LeaveResult{
		Room:      rm,
		Player:    rm.Players[idx],
		WasDrawer: rm.Game.IsDrawer(playerID),
	}
	rm.Players = append(rm.Players[:idx], rm.Players[idx+1:]...)

	if len(rm.Players) == 0 {
		rm.Game.CancelTimers()
		delete(r.rooms, code)
		res.Destroyed = true
		return res, nil
	}
	if rm.OwnerID == playerID {
		rm.OwnerID = rm.Players[0].ID
		res.OwnerChanged = true
	}
	if rm.Game.Phase == models.PhaseLobby && len(rm.Players) < 2 {
		rm.Game.Phase = models.PhaseIdle
	}
	return res, nil
}

// FindByConn locates the room and player bound to a connection.
func (r *Registry) FindByConn(connID string) (*models.Room, *models.Player) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rm := range r.rooms {
		for _, p := range rm.Players {
			if p.ConnID == connID {
				return rm, p
			}
		}
	}
	return nil, nil
}

// Get looks a room up by code.
func (r *Registry) Get(code string) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	return rm, ok
}

// Alive reports whether rm is still the room registered under its code.
func (r *Registry) Alive(rm *models.Room) bool {
	cur, ok := r.Get(rm.Code)
	return ok && cur == rm
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Summary is a point-in-time view of one room.
type Summary struct {
	Code    string
	Players int
	Phase   models.Phase
}

// Snapshot lists every live room. It reads per-room state, so callers must
// hold whatever lock serializes room mutation.
func (r *Registry) Snapshot() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, Summary{Code: rm.Code, Players: len(rm.Players), Phase: rm.Game.Phase})
	}
	return out
}
