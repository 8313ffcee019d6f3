// internal/models/room.go
package models

import "strings"

// Room is an isolated game session identified by a short code.
// Players are kept in join order, which is also the turn order.
type Room struct {
	Code     string
	OwnerID  string
	Players  []*Player
	Settings Settings
	Game     *GameState
}

// IsOwner reports whether playerID currently owns the room.
func (r *Room) IsOwner(playerID string) bool {
	return r.OwnerID == playerID
}

// Player looks a member up by id.
func (r *Room) Player(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Seat returns the join-order position of playerID, or -1.
func (r *Room) Seat(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// HasName reports whether a member already uses name (exact, case-sensitive).
func (r *Room) HasName(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// RestingPhase is the phase a room falls back to when no game is running.
func (r *Room) RestingPhase() Phase {
	if len(r.Players) > 1 {
		return PhaseLobby
	}
	return PhaseIdle
}

// Roster builds the serialized scoreboard, deriving owner/drawer flags.
func (r *Room) Roster() []PlayerView {
	views := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		views = append(views, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			IsOwner:   r.IsOwner(p.ID),
			IsDrawing: r.Game != nil && r.Game.IsDrawer(p.ID),
		})
	}
	return views
}

// ResetScores zeroes every member's score.
func (r *Room) ResetScores() {
	for _, p := range r.Players {
		p.Score = 0
	}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
