// internal/models/settings.go
package models

import "fmt"

const (
	DefaultRounds      = 3
	DefaultDrawSeconds = 90

	MinRounds      = 1
	MaxRounds      = 10
	MinDrawSeconds = 15
	MaxDrawSeconds = 240

	// MaxPlayers caps room membership.
	MaxPlayers = 8
)

// Settings holds the owner-configurable parameters of a room.
type Settings struct {
	Rounds      int `json:"rounds"`
	DrawSeconds int `json:"drawTime"`
}

// DefaultSettings returns the settings a new room starts with.
func DefaultSettings() Settings {
	return Settings{Rounds: DefaultRounds, DrawSeconds: DefaultDrawSeconds}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Rounds      *int `json:"rounds,omitempty"`
	DrawSeconds *int `json:"drawTime,omitempty"`
}

// Apply returns s with the patch applied, or an error if a value is out of range.
func (p SettingsPatch) Apply(s Settings) (Settings, error) {
	if p.Rounds != nil {
		if *p.Rounds < MinRounds || *p.Rounds > MaxRounds {
			return s, fmt.Errorf("rounds must be between %d and %d", MinRounds, MaxRounds)
		}
		s.Rounds = *p.Rounds
	}
	if p.DrawSeconds != nil {
		if *p.DrawSeconds < MinDrawSeconds || *p.DrawSeconds > MaxDrawSeconds {
			return s, fmt.Errorf("drawTime must be between %d and %d", MinDrawSeconds, MaxDrawSeconds)
		}
		s.DrawSeconds = *p.DrawSeconds
	}
	return s, nil
}
