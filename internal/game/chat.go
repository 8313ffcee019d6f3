// internal/game/chat.go
package game

import (
	"encoding/json"
	"math"

	"github.com/jason-s-yu/sketch/internal/guess"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Points awarded per correct guess.
const (
	FirstGuessPoints = 100
	LaterGuessPoints = 50
	DrawerPoints     = 25
)

// Chat relays a chat line, treating it as a guess while a word is being drawn.
func (e *Engine) Chat(connID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.member(connID)
	if err != nil {
		return err
	}
	gs := rm.Game
	if gs.IsDrawer(p.ID) {
		return models.Errorf(models.CodeNotAuthorized, "the drawer cannot chat during their turn")
	}

	msg := protocol.ChatMessage{PlayerID: p.ID, PlayerName: p.Name, Message: text}
	if gs.Phase != models.PhaseDrawing {
		e.broadcast(rm, msg)
		return nil
	}

	if gs.HasGuessed(p.ID) {
		// Players who know the word only talk among themselves and the drawer.
		msg.GuessersOnly = true
		for _, other := range rm.Players {
			if gs.IsDrawer(other.ID) || gs.HasGuessed(other.ID) {
				e.send(other, msg)
			}
		}
		return nil
	}

	res := guess.Evaluate(text, gs.Word)
	if res.Exact {
		e.scoreGuess(rm, p)
		return nil
	}
	e.broadcast(rm, msg)
	if res.Close {
		e.send(p, protocol.CloseGuess{Message: text})
	}
	return nil
}

// scoreGuess awards points for a correct guess to the guesser and the drawer.
func (e *Engine) scoreGuess(rm *models.Room, p *models.Player) {
	gs := rm.Game
	gs.Guessed = append(gs.Guessed, p.ID)
	bonus := gs.Difficulty.Bonus()

	base := LaterGuessPoints
	if len(gs.Guessed) == 1 {
		base = FirstGuessPoints
	}
	p.Score += base
	p.Score += int(math.Floor(float64(p.Score) * bonus))

	if drawer := rm.Player(gs.DrawerID); drawer != nil {
		drawer.Score += DrawerPoints + int(math.Floor(DrawerPoints*bonus))
	}

	e.metrics.CorrectGuess()
	e.broadcast(rm, protocol.CorrectGuess{PlayerID: p.ID, PlayerName: p.Name, Players: rm.Roster()})
	e.roomLog(rm).WithFields(logrus.Fields{"player": p.ID, "score": p.Score}).Debug("correct guess")

	e.checkEarlyEnd(rm)
}

// DrawData relays an opaque stroke batch from the drawer to everyone else.
func (e *Engine) DrawData(connID string, data json.RawMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.drawer(connID)
	if err != nil {
		return err
	}
	e.broadcast(rm, protocol.DrawRelay{Data: data}, p.ID)
	return nil
}

// ClearCanvas tells everyone but the drawer to wipe their canvas.
func (e *Engine) ClearCanvas(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.drawer(connID)
	if err != nil {
		return err
	}
	e.broadcast(rm, protocol.ClearRelay{}, p.ID)
	return nil
}

func (e *Engine) drawer(connID string) (*models.Room, *models.Player, error) {
	rm, p, err := e.member(connID)
	if err != nil {
		return nil, nil, err
	}
	if !rm.Game.IsDrawer(p.ID) {
		return nil, nil, models.Errorf(models.CodeNotAuthorized, "only the current drawer can draw")
	}
	return rm, p, nil
}
