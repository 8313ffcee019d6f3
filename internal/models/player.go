// internal/models/player.go
package models

// Player is a room member bound to exactly one live connection.
// Owner and drawer roles are not stored here; see Room.IsOwner and GameState.IsDrawer.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	ConnID string `json:"-"`
}

// PlayerView is the serialized form of a player inside a room snapshot.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	IsOwner   bool   `json:"isOwner"`
	IsDrawing bool   `json:"isDrawing"`
}
