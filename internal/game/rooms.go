// internal/game/rooms.go
package game

import (
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/protocol"
	"github.com/sirupsen/logrus"
)

// CreateRoom opens a new room owned by the connection's new player.
func (e *Engine) CreateRoom(connID, playerName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rm, _ := e.rooms.FindByConn(connID); rm != nil {
		return models.ErrAlreadyInRoom
	}
	rm, p := e.rooms.Create(playerName, connID)
	e.metrics.SetRooms(e.rooms.Len())

	e.send(p, protocol.RoomCreated{
		RoomCode: rm.Code,
		PlayerID: p.ID,
		Players:  rm.Roster(),
		Settings: rm.Settings,
	})
	e.roomLog(rm).WithField("player", p.ID).Info("room created")
	return nil
}

// JoinRoom adds the connection's new player to an existing room.
func (e *Engine) JoinRoom(connID, code, playerName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rm, _ := e.rooms.FindByConn(connID); rm != nil {
		return models.ErrAlreadyInRoom
	}
	rm, p, err := e.rooms.Join(code, playerName, connID)
	if err != nil {
		return err
	}

	roster := rm.Roster()
	e.send(p, protocol.RoomJoined{
		RoomCode: rm.Code,
		PlayerID: p.ID,
		IsOwner:  rm.IsOwner(p.ID),
		OwnerID:  rm.OwnerID,
		Players:  roster,
		Settings: rm.Settings,
	})
	e.broadcast(rm, protocol.PlayerJoined{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		OwnerID:    rm.OwnerID,
		Players:    roster,
		Settings:   rm.Settings,
	}, p.ID)
	e.roomLog(rm).WithFields(logrus.Fields{"player": p.ID, "players": len(rm.Players)}).Info("player joined")
	return nil
}

// UpdateSettings applies a partial settings change. Owner only, never mid-game.
func (e *Engine) UpdateSettings(connID string, patch models.SettingsPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.member(connID)
	if err != nil {
		return err
	}
	if !rm.IsOwner(p.ID) {
		return models.Errorf(models.CodeNotAuthorized, "only the room owner can change settings")
	}
	if rm.Game.Phase.InProgress() {
		return models.ErrGameInProgress
	}
	settings, err := patch.Apply(rm.Settings)
	if err != nil {
		return models.Errorf(models.CodeMalformedMessage, err.Error())
	}

	rm.Settings = settings
	rm.Game.TotalRounds = settings.Rounds
	e.broadcast(rm, protocol.SettingsUpdated{OwnerID: rm.OwnerID, Settings: settings})
	return nil
}

// ResetGame abandons any running game and returns the room to its resting phase.
func (e *Engine) ResetGame(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p, err := e.member(connID)
	if err != nil {
		return err
	}
	if !rm.IsOwner(p.ID) {
		return models.Errorf(models.CodeNotAuthorized, "only the room owner can reset the game")
	}

	e.resetState(rm)
	rm.ResetScores()
	e.broadcast(rm, protocol.GameReset{Players: rm.Roster()})
	e.roomLog(rm).Info("game reset")
	return nil
}

// resetState replaces the game state with a resting one. The epoch carries
// over so callbacks scheduled against the old state stay invalid.
func (e *Engine) resetState(rm *models.Room) {
	old := rm.Game
	old.CancelTimers()
	rm.Game = models.NewGameState(rm.RestingPhase(), rm.Settings.Rounds)
	rm.Game.Epoch = old.Epoch
}

// Disconnect removes the connection's player, if any, and repairs the room:
// ownership moves on, an interrupted turn ends, and a game left with fewer
// than two players is abandoned.
func (e *Engine) Disconnect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rm, p := e.rooms.FindByConn(connID)
	if rm == nil {
		return
	}
	gs := rm.Game
	inProgress := gs.Phase.InProgress()
	seat := rm.Seat(p.ID)

	res, err := e.rooms.Leave(rm.Code, p.ID)
	if err != nil {
		e.log.WithError(err).WithField("conn", connID).Warn("leave failed")
		return
	}
	logger := e.roomLog(rm).WithField("player", p.ID)
	if res.Destroyed {
		e.metrics.SetRooms(e.rooms.Len())
		logger.Info("room destroyed")
		return
	}
	gs.RemoveGuesser(p.ID)
	if inProgress {
		gs.Unseat(seat)
	}

	e.broadcast(rm, protocol.PlayerLeft{
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		OwnerID:      rm.OwnerID,
		OwnerChanged: res.OwnerChanged,
		Players:      rm.Roster(),
	})
	logger.WithField("ownerChanged", res.OwnerChanged).Info("player left")

	switch {
	case inProgress && len(rm.Players) < 2:
		e.abandonGame(rm)
	case inProgress && res.WasDrawer:
		e.endTurn(rm)
	case inProgress:
		e.checkEarlyEnd(rm)
	case gs.Phase == models.PhaseGameEnd && len(rm.Players) < 2:
		gs.Phase = models.PhaseIdle
	}
}
