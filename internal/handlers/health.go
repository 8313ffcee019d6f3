// internal/handlers/health.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/sketch/internal/game"
)

// HealthHandler reports liveness plus live room and connection counts.
func HealthHandler(engine *game.Engine, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		players := 0
		rooms := engine.Rooms()
		for _, s := range rooms {
			players += s.Players
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "ok",
			"rooms":       len(rooms),
			"players":     players,
			"connections": hub.Len(),
		})
	}
}
