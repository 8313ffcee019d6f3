// internal/game/turn.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/sirupsen/logrus"
)

// StartGame begins a new game in the connection's room. Owner only.
func (e *Engine) StartGame(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.member(connID)
	if err != nil {
		return err
	}
	if !rm.IsOwner(p.ID) {
		return models.Errorf(models.CodeNotAuthorized, "only the room owner can start the game")
	}
	if rm.Game.Phase.InProgress() {
		return models.ErrGameInProgress
	}
	if len(rm.Players) < 2 {
		return models.ErrInsufficientPlayers
	}

	old := rm.Game
	old.CancelTimers()
	gs := models.NewGameState(models.PhaseTurnStart, rm.Settings.Rounds)
	gs.GameID = uuid.NewString()
	gs.Round = 1
	gs.Epoch = old.Epoch
	rm.Game = gs

	rm.ResetScores()
	e.bank.Reset()

	e.broadcast(rm, protocol.GameStarted{
		Round:       gs.Round,
		TotalRounds: gs.TotalRounds,
		Players:     rm.Roster(),
	})
	e.roomLog(rm).WithField("game", gs.GameID).Info("game started")

	e.schedule(rm, StartDelay, false, e.advanceTurn)
	return nil
}

// advanceTurn hands the turn to the next drawer in join order, or ends the
// game once every round has been played. Departures are folded into
// TurnIndex by Disconnect, so every remaining player draws once per round.
func (e *Engine) advanceTurn(rm *models.Room) {
	gs := rm.Game
	n := len(rm.Players)
	if n < 2 {
		e.abandonGame(rm)
		return
	}

	if gs.TurnIndex >= n {
		gs.Round++
		gs.TurnIndex = 0
	}
	if gs.Round > gs.TotalRounds {
		e.finishGame(rm)
		return
	}

	drawer := rm.Players[gs.TurnIndex]
	gs.TurnIndex++
	gs.DrawerID = drawer.ID
	gs.Guessed = nil
	gs.Word = ""
	gs.Difficulty = ""
	gs.Phase = models.PhaseTurnStart

	e.broadcast(rm, protocol.TurnStart{
		DrawerID:    drawer.ID,
		DrawerName:  drawer.Name,
		Round:       gs.Round,
		TotalRounds: gs.TotalRounds,
		Players:     rm.Roster(),
	})

	gs.Choices = e.bank.Choices()
	gs.Phase = models.PhaseWordSelection
	limit := int(SelectionTimeout / time.Second)
	e.send(drawer, protocol.WordSelection{Words: gs.Choices, TimeLimit: limit})
	e.broadcast(rm, protocol.WordSelection{Words: []models.WordChoice{}, TimeLimit: limit}, drawer.ID)

	e.roomLog(rm).WithFields(logrus.Fields{"drawer": drawer.ID, "seat": gs.TurnIndex - 1}).Debug("turn started")
	e.schedule(rm, SelectionTimeout, true, e.autoSelect)
}

// autoSelect picks a random offered word for a drawer who let the selection timer run out.
func (e *Engine) autoSelect(rm *models.Room) {
	gs := rm.Game
	if gs.Phase != models.PhaseWordSelection || len(gs.Choices) == 0 {
		return
	}
	e.chooseWord(rm, gs.Choices[e.pick(len(gs.Choices))])
}

// SelectWord records the drawer's pick from the offered choices.
func (e *Engine) SelectWord(connID, word string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.member(connID)
	if err != nil {
		return err
	}
	gs := rm.Game
	if !gs.IsDrawer(p.ID) {
		return models.Errorf(models.CodeNotAuthorized, "only the current drawer can select a word")
	}
	if gs.Phase != models.PhaseWordSelection {
		return models.Errorf(models.CodeNotAuthorized, "word already selected")
	}
	choice, ok := gs.ChoiceFor(word)
	if !ok {
		return models.Errorf(models.CodeMalformedMessage, "word was not offered")
	}

	e.chooseWord(rm, choice)
	return nil
}

func (e *Engine) chooseWord(rm *models.Room, choice models.WordChoice) {
	gs := rm.Game
	gs.Word = choice.Word
	gs.Difficulty = choice.Difficulty
	gs.Phase = models.PhaseWordSelected

	e.send(rm.Player(gs.DrawerID), protocol.WordChosen{Word: choice.Word, Difficulty: choice.Difficulty})
	e.broadcast(rm, protocol.WordChosen{Word: mask(choice.Word)}, gs.DrawerID)

	e.schedule(rm, RevealDelay, false, e.startDrawing)
}

func (e *Engine) startDrawing(rm *models.Room) {
	rm.Game.Phase = models.PhaseDrawing
	e.broadcast(rm, protocol.DrawingPhase{DrawTime: rm.Settings.DrawSeconds})
	e.schedule(rm, time.Duration(rm.Settings.DrawSeconds)*time.Second, false, e.endTurn)
}

// endTurn reveals the word and queues the next turn.
func (e *Engine) endTurn(rm *models.Room) {
	gs := rm.Game
	drawerID := gs.DrawerID
	guessed := append([]string{}, gs.Guessed...)

	gs.Phase = models.PhaseTurnEnd
	gs.DrawerID = ""

	e.broadcast(rm, protocol.TurnEnd{
		Word:            gs.Word,
		DrawerID:        drawerID,
		CorrectGuessers: guessed,
		Players:         rm.Roster(),
	})
	e.publish(cache.ResultRecord{
		GameID:     gs.GameID,
		RoomCode:   rm.Code,
		Kind:       cache.KindTurn,
		Round:      gs.Round,
		Word:       gs.Word,
		Difficulty: string(gs.Difficulty),
		DrawerID:   drawerID,
		Guessers:   guessed,
		Scores:     scores(rm),
		Timestamp:  time.Now().UnixMilli(),
	})

	e.schedule(rm, InterTurnDelay, false, e.advanceTurn)
}

// checkEarlyEnd shortens the turn once every non-drawer has guessed.
func (e *Engine) checkEarlyEnd(rm *models.Room) {
	gs := rm.Game
	if gs.Phase != models.PhaseDrawing {
		return
	}
	for _, p := range rm.Players {
		if !gs.IsDrawer(p.ID) && !gs.HasGuessed(p.ID) {
			return
		}
	}
	e.schedule(rm, EarlyEndDelay, false, e.endTurn)
}

// finishGame announces the final standings after the last round.
func (e *Engine) finishGame(rm *models.Room) {
	gs := rm.Game
	gs.CancelTimers()
	gs.Phase = models.PhaseGameEnd
	gs.DrawerID = ""
	gs.Word = ""
	e.announceEnd(rm, "")
}

// abandonGame stops a game that no longer has enough players.
func (e *Engine) abandonGame(rm *models.Room) {
	gs := rm.Game
	gs.CancelTimers()
	gs.Phase = rm.RestingPhase()
	gs.DrawerID = ""
	gs.Word = ""
	e.announceEnd(rm, protocol.GameEndAbandoned)
}

func (e *Engine) announceEnd(rm *models.Room, reason string) {
	gs := rm.Game
	won := winners(rm)
	round := gs.Round
	if round > gs.TotalRounds {
		round = gs.TotalRounds
	}

	e.broadcast(rm, protocol.GameEnd{Players: rm.Roster(), Winners: won, Reason: reason})
	e.publish(cache.ResultRecord{
		GameID:    gs.GameID,
		RoomCode:  rm.Code,
		Kind:      cache.KindGame,
		Round:     round,
		Scores:    scores(rm),
		Winners:   won,
		Reason:    reason,
		Timestamp: time.Now().UnixMilli(),
	})

	if reason == "" {
		reason = "completed"
	}
	e.metrics.GameFinished(reason)
	e.roomLog(rm).WithFields(logrus.Fields{"game": gs.GameID, "reason": reason, "winners": won}).Info("game ended")
}
