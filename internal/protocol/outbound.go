package protocol

import (
	"encoding/json"
	"errors"

	"github.com/jason-s-yu/sketch/internal/models"
)

// Outbound message types.
const (
	TypeConnectionEstablished = "connection-established"
	TypeRoomCreated           = "room-created"
	TypeRoomJoined            = "room-joined"
	TypePlayerJoined          = "player-joined"
	TypePlayerLeft            = "player-left"
	TypeError                 = "error"
	TypeGameStarted           = "game-started"
	TypeTurnStart             = "turn-start"
	TypeWordSelection         = "word-selection"
	TypeWordChosen            = "word-selected"
	TypeDrawingPhase          = "drawing-phase"
	TypeTurnEnd               = "turn-end"
	TypeGameEnd               = "game-end"
	TypeDrawRelay             = "draw-data"
	TypeClearRelay            = "clear-canvas"
	TypeChatMessage           = "chat-message"
	TypeCorrectGuess          = "correct-guess"
	TypeCloseGuess            = "close-guess"
	TypeSettingsUpdated       = "settings-updated"
	TypeGameReset             = "game-reset"
)

// GameEndAbandoned is the reason sent when too few players remain to continue.
const GameEndAbandoned = "abandoned"

// Outbound is implemented only by the server-to-client payloads in this package.
type Outbound interface {
	outbound()
	Type() string
}

type ConnectionEstablished struct {
	ConnectionID string `json:"connectionId"`
}

type RoomCreated struct {
	RoomCode string              `json:"roomId"`
	PlayerID string              `json:"playerId"`
	Players  []models.PlayerView `json:"players"`
	Settings models.Settings     `json:"settings"`
}

type RoomJoined struct {
	RoomCode string              `json:"roomId"`
	PlayerID string              `json:"playerId"`
	IsOwner  bool                `json:"isCreator"`
	OwnerID  string              `json:"creatorId"`
	Players  []models.PlayerView `json:"players"`
	Settings models.Settings     `json:"settings"`
}

type PlayerJoined struct {
	PlayerID   string              `json:"playerId"`
	PlayerName string              `json:"playerName"`
	OwnerID    string              `json:"creatorId"`
	Players    []models.PlayerView `json:"players"`
	Settings   models.Settings     `json:"settings"`
}

// PlayerLeft also announces an ownership change when OwnerChanged is set.
type PlayerLeft struct {
	PlayerID     string              `json:"playerId"`
	PlayerName   string              `json:"playerName"`
	OwnerID      string              `json:"creatorId"`
	OwnerChanged bool                `json:"ownerChanged,omitempty"`
	Players      []models.PlayerView `json:"players"`
}

type Error struct {
	Code    models.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type GameStarted struct {
	Round       int                 `json:"round"`
	TotalRounds int                 `json:"totalRounds"`
	Players     []models.PlayerView `json:"players"`
}

type TurnStart struct {
	DrawerID    string              `json:"drawerId"`
	DrawerName  string              `json:"drawerName"`
	Round       int                 `json:"currentRound"`
	TotalRounds int                 `json:"totalRounds"`
	Players     []models.PlayerView `json:"players"`
}

// WordSelection lists the drawer's options; everyone else receives an empty list.
type WordSelection struct {
	Words     []models.WordChoice `json:"words"`
	TimeLimit int                 `json:"timeLimit"`
}

// WordChosen carries the full word to the drawer and a mask to the others.
type WordChosen struct {
	Word       string            `json:"word"`
	Difficulty models.Difficulty `json:"difficulty,omitempty"`
}

type DrawingPhase struct {
	DrawTime int `json:"drawTime"`
}

type TurnEnd struct {
	Word            string              `json:"word"`
	DrawerID        string              `json:"drawerId"`
	CorrectGuessers []string            `json:"correctGuessers"`
	Players         []models.PlayerView `json:"players"`
}

type GameEnd struct {
	Players []models.PlayerView `json:"players"`
	Winners []string            `json:"winners"`
	Reason  string              `json:"reason,omitempty"`
}

type DrawRelay struct {
	Data json.RawMessage `json:"drawData"`
}

type ClearRelay struct{}

type ChatMessage struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	// GuessersOnly marks chat visible only to the drawer and correct guessers.
	GuessersOnly bool `json:"guessersOnly,omitempty"`
}

type CorrectGuess struct {
	PlayerID   string              `json:"playerId"`
	PlayerName string              `json:"playerName"`
	Players    []models.PlayerView `json:"players"`
}

type CloseGuess struct {
	Message string `json:"message"`
}

type SettingsUpdated struct {
	OwnerID  string          `json:"creatorId"`
	Settings models.Settings `json:"settings"`
}

type GameReset struct {
	Players []models.PlayerView `json:"players"`
}

func (ConnectionEstablished) outbound() {}
func (RoomCreated) outbound()           {}
func (RoomJoined) outbound()            {}
func (PlayerJoined) outbound()          {}
func (PlayerLeft) outbound()            {}
func (Error) outbound()                 {}
func (GameStarted) outbound()           {}
func (TurnStart) outbound()             {}
func (WordSelection) outbound()         {}
func (WordChosen) outbound()            {}
func (DrawingPhase) outbound()          {}
func (TurnEnd) outbound()               {}
func (GameEnd) outbound()               {}
func (DrawRelay) outbound()             {}
func (ClearRelay) outbound()            {}
func (ChatMessage) outbound()           {}
func (CorrectGuess) outbound()          {}
func (CloseGuess) outbound()            {}
func (SettingsUpdated) outbound()       {}
func (GameReset) outbound()             {}

func (ConnectionEstablished) Type() string { return TypeConnectionEstablished }
func (RoomCreated) Type() string           { return TypeRoomCreated }
func (RoomJoined) Type() string            { return TypeRoomJoined }
func (PlayerJoined) Type() string          { return TypePlayerJoined }
func (PlayerLeft) Type() string            { return TypePlayerLeft }
func (Error) Type() string                 { return TypeError }
func (GameStarted) Type() string           { return TypeGameStarted }
func (TurnStart) Type() string             { return TypeTurnStart }
func (WordSelection) Type() string         { return TypeWordSelection }
func (WordChosen) Type() string            { return TypeWordChosen }
func (DrawingPhase) Type() string          { return TypeDrawingPhase }
func (TurnEnd) Type() string               { return TypeTurnEnd }
func (GameEnd) Type() string               { return TypeGameEnd }
func (DrawRelay) Type() string             { return TypeDrawRelay }
func (ClearRelay) Type() string            { return TypeClearRelay }
func (ChatMessage) Type() string           { return TypeChatMessage }
func (CorrectGuess) Type() string          { return TypeCorrectGuess }
func (CloseGuess) Type() string            { return TypeCloseGuess }
func (SettingsUpdated) Type() string       { return TypeSettingsUpdated }
func (GameReset) Type() string             { return TypeGameReset }

// Encode wraps msg in an envelope and marshals it.
func Encode(msg Outbound) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msg.Type(), Payload: payload})
}

// ErrorFrom converts a coded error into its wire form. Uncoded errors are reported as Internal.
func ErrorFrom(err error) Error {
	var e *models.Error
	if errors.As(err, &e) {
		return Error{Code: e.Code, Message: e.Msg}
	}
	return Error{Code: models.CodeInternal, Message: "internal server error"}
}
