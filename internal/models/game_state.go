// internal/models/game_state.go
package models

// Phase is the stage a room's game is in.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLobby         Phase = "lobby"
	PhaseTurnStart     Phase = "turn-start"
	PhaseWordSelection Phase = "word-selection"
	PhaseWordSelected  Phase = "word-selected"
	PhaseDrawing       Phase = "drawing"
	PhaseTurnEnd       Phase = "turn-end"
	PhaseGameEnd       Phase = "game-end"
)

// InProgress reports whether a game is running, i.e. a turn is being set up, played or revealed.
func (p Phase) InProgress() bool {
	switch p {
	case PhaseTurnStart, PhaseWordSelection, PhaseWordSelected, PhaseDrawing, PhaseTurnEnd:
		return true
	}
	return false
}

// Joinable reports whether new players may enter a room in this phase.
func (p Phase) Joinable() bool {
	return p == PhaseIdle || p == PhaseLobby
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// GameState is the authoritative per-room game record.
// It is replaced wholesale on game start and reset.
type GameState struct {
	GameID      string
	Phase       Phase
	Round       int
	TotalRounds int

	// TurnIndex is the seat of the next drawer in the current round. Seats
	// below it have already drawn this round.
	TurnIndex int

	DrawerID   string
	Word       string
	Difficulty Difficulty
	Choices    []WordChoice

	// Guessed holds correct guessers of the current turn in guess order.
	Guessed []string

	// Epoch is bumped every time a timer is installed or cancelled. Timer
	// callbacks compare the value captured at schedule time against it.
	Epoch uint64

	TurnTimer      Timer
	SelectionTimer Timer
}

// NewGameState returns a state resting in the given phase.
func NewGameState(phase Phase, totalRounds int) *GameState {
	return &GameState{Phase: phase, TotalRounds: totalRounds}
}

// IsDrawer reports whether playerID is drawing the current turn.
func (g *GameState) IsDrawer(playerID string) bool {
	return g.DrawerID != "" && g.DrawerID == playerID
}

// HasGuessed reports whether playerID already guessed the current word.
func (g *GameState) HasGuessed(playerID string) bool {
	for _, id := range g.Guessed {
		if id == playerID {
			return true
		}
	}
	return false
}

// RemoveGuesser drops playerID from the correct-guesser set.
func (g *GameState) RemoveGuesser(playerID string) {
	for i, id := range g.Guessed {
		if id == playerID {
			g.Guessed = append(g.Guessed[:i], g.Guessed[i+1:]...)
			return
		}
	}
}

// Unseat keeps the rotation aligned after the player at seat i leaves the
// roster: everyone behind the seat moves up one, so the next-drawer seat does too
// when the departed player had already drawn this round.
func (g *GameState) Unseat(i int) {
	if i >= 0 && i < g.TurnIndex {
		g.TurnIndex--
	}
}

// CancelTimers stops any pending timer and invalidates callbacks already in flight.
func (g *GameState) CancelTimers() {
	if g.TurnTimer != nil {
		g.TurnTimer.Stop()
		g.TurnTimer = nil
	}
	if g.SelectionTimer != nil {
		g.SelectionTimer.Stop()
		g.SelectionTimer = nil
	}
	g.Epoch++
}

// ChoiceFor returns the offered choice matching word, case-insensitively.
func (g *GameState) ChoiceFor(word string) (WordChoice, bool) {
	for _, c := range g.Choices {
		if equalFold(c.Word, word) {
			return c, true
		}
	}
	return WordChoice{}, false
}
