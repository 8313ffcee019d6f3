package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTimer struct{ stopped bool }

func (t *stubTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func intPtr(v int) *int { return &v }

func TestSettingsPatch(t *testing.T) {
	s, err := SettingsPatch{Rounds: intPtr(5)}.Apply(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, Settings{Rounds: 5, DrawSeconds: DefaultDrawSeconds}, s)

	tests := []SettingsPatch{
		{Rounds: intPtr(MinRounds - 1)},
		{Rounds: intPtr(MaxRounds + 1)},
		{DrawSeconds: intPtr(MinDrawSeconds - 1)},
		{DrawSeconds: intPtr(MaxDrawSeconds + 1)},
		{Rounds: intPtr(4), DrawSeconds: intPtr(1)},
	}
	for i, p := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got, err := p.Apply(DefaultSettings())
			assert.Error(t, err)
			assert.Equal(t, DefaultSettings(), got)
		})
	}
}

func TestPhasePredicates(t *testing.T) {
	for _, p := range []Phase{PhaseTurnStart, PhaseWordSelection, PhaseWordSelected, PhaseDrawing, PhaseTurnEnd} {
		assert.True(t, p.InProgress(), p)
		assert.False(t, p.Joinable(), p)
	}
	for _, p := range []Phase{PhaseIdle, PhaseLobby} {
		assert.False(t, p.InProgress(), p)
		assert.True(t, p.Joinable(), p)
	}
	assert.False(t, PhaseGameEnd.InProgress())
	assert.False(t, PhaseGameEnd.Joinable())
}

func TestCancelTimersBumpsEpoch(t *testing.T) {
	gs := NewGameState(PhaseDrawing, 3)
	turn, sel := &stubTimer{}, &stubTimer{}
	gs.TurnTimer, gs.SelectionTimer = turn, sel

	gs.CancelTimers()
	assert.True(t, turn.stopped)
	assert.True(t, sel.stopped)
	assert.Nil(t, gs.TurnTimer)
	assert.Nil(t, gs.SelectionTimer)
	assert.Equal(t, uint64(1), gs.Epoch)

	gs.CancelTimers()
	assert.Equal(t, uint64(2), gs.Epoch)
}

func TestGuessersAndChoices(t *testing.T) {
	gs := NewGameState(PhaseDrawing, 3)
	gs.DrawerID = "d"
	gs.Guessed = []string{"a", "b"}
	gs.Choices = []WordChoice{{Word: "Guitar", Difficulty: Medium}}

	assert.True(t, gs.IsDrawer("d"))
	assert.False(t, gs.IsDrawer(""))
	assert.True(t, gs.HasGuessed("b"))
	gs.RemoveGuesser("a")
	assert.Equal(t, []string{"b"}, gs.Guessed)

	c, ok := gs.ChoiceFor(" guitar ")
	assert.True(t, ok)
	assert.Equal(t, Medium, c.Difficulty)
	_, ok = gs.ChoiceFor("piano")
	assert.False(t, ok)
}

func TestRosterDerivesFlags(t *testing.T) {
	rm := &Room{
		OwnerID: "a",
		Players: []*Player{{ID: "a", Name: "alice", Score: 10}, {ID: "b", Name: "bob"}},
		Game:    NewGameState(PhaseDrawing, 3),
	}
	rm.Game.DrawerID = "b"

	roster := rm.Roster()
	assert.Equal(t, []PlayerView{
		{ID: "a", Name: "alice", Score: 10, IsOwner: true},
		{ID: "b", Name: "bob", IsDrawing: true},
	}, roster)
	assert.Equal(t, PhaseLobby, rm.RestingPhase())

	rm.ResetScores()
	assert.Zero(t, rm.Players[0].Score)
	assert.True(t, rm.HasName("bob"))
	assert.False(t, rm.HasName("Bob"))
}

func TestErrorMatchesOnCode(t *testing.T) {
	err := fmt.Errorf("join: %w", Errorf(CodeRoomFull, "eight is enough"))
	assert.True(t, errors.Is(err, ErrRoomFull))
	assert.False(t, errors.Is(err, ErrNameTaken))
	assert.Equal(t, "RoomFull: eight is enough", Errorf(CodeRoomFull, "eight is enough").Error())
}

func TestDifficulty(t *testing.T) {
	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, 0.5, d.Bonus())
	assert.Equal(t, 0.25, Medium.Bonus())
	assert.Zero(t, Easy.Bonus())
	_, err = ParseDifficulty("extreme")
	assert.Error(t, err)
}

func TestUnseatKeepsNextDrawerSeat(t *testing.T) {
	rm := &Room{Players: []*Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	assert.Equal(t, 1, rm.Seat("b"))
	assert.Equal(t, -1, rm.Seat("zz"))

	g := &GameState{TurnIndex: 2}
	g.Unseat(2)
	assert.Equal(t, 2, g.TurnIndex, "a player yet to draw does not move the seat")
	g.Unseat(-1)
	assert.Equal(t, 2, g.TurnIndex)
	g.Unseat(0)
	assert.Equal(t, 1, g.TurnIndex)
	g.Unseat(0)
	assert.Equal(t, 0, g.TurnIndex)
	g.Unseat(0)
	assert.Equal(t, 0, g.TurnIndex)
}
