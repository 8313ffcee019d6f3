// Package protocol defines the JSON envelopes exchanged over the game socket.
//
// Every frame is {"type": <string>, "payload": <object>}. Inbound frames are
// decoded into a closed set of message structs; the gateway switches over
// them exhaustively.
package protocol

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/jason-s-yu/sketch/internal/models"
)

// MaxNameLength bounds player names in runes.
const MaxNameLength = 24

// MaxChatLength bounds a single chat message in runes.
const MaxChatLength = 200

// Inbound message types.
const (
	TypeCreateRoom     = "create-room"
	TypeJoinRoom       = "join-room"
	TypeStartGame      = "start-game"
	TypeUpdateSettings = "update-settings"
	TypeSelectWord     = "word-selected"
	TypeDrawData       = "draw-data"
	TypeClearCanvas    = "clear-canvas"
	TypeChat           = "chat-message"
	TypeResetGame      = "reset-game"
)

// Envelope is the outer frame of every message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound is implemented only by the message structs in this package.
type Inbound interface {
	inbound()
	// Type returns the wire type tag.
	Type() string
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type StartGame struct{}

type UpdateSettings struct {
	Settings models.SettingsPatch `json:"settings"`
}

// SelectWord carries the drawer's pick. Difficulty is accepted for
// compatibility but the server resolves it from the offered choices.
type SelectWord struct {
	Word       string `json:"word"`
	Difficulty string `json:"difficulty,omitempty"`
}

// DrawData is an opaque stroke batch relayed verbatim.
type DrawData struct {
	Data json.RawMessage `json:"drawData"`
}

type ClearCanvas struct{}

type Chat struct {
	Message string `json:"message"`
}

type ResetGame struct{}

func (CreateRoom) inbound()     {}
func (JoinRoom) inbound()       {}
func (StartGame) inbound()      {}
func (UpdateSettings) inbound() {}
func (SelectWord) inbound()     {}
func (DrawData) inbound()       {}
func (ClearCanvas) inbound()    {}
func (Chat) inbound()           {}
func (ResetGame) inbound()      {}

func (CreateRoom) Type() string     { return TypeCreateRoom }
func (JoinRoom) Type() string       { return TypeJoinRoom }
func (StartGame) Type() string      { return TypeStartGame }
func (UpdateSettings) Type() string { return TypeUpdateSettings }
func (SelectWord) Type() string     { return TypeSelectWord }
func (DrawData) Type() string       { return TypeDrawData }
func (ClearCanvas) Type() string    { return TypeClearCanvas }
func (Chat) Type() string           { return TypeChat }
func (ResetGame) Type() string      { return TypeResetGame }

// Decode parses one text frame. Errors are *models.Error with code
// MalformedMessage or UnknownMessageType.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, models.Errorf(models.CodeMalformedMessage, "invalid JSON envelope")
	}
	if env.Type == "" {
		return nil, models.Errorf(models.CodeMalformedMessage, "missing message type")
	}

	switch env.Type {
	case TypeCreateRoom:
		var m CreateRoom
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		name, err := cleanName(m.PlayerName)
		if err != nil {
			return nil, err
		}
		m.PlayerName = name
		return m, nil

	case TypeJoinRoom:
		var m JoinRoom
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		name, err := cleanName(m.PlayerName)
		if err != nil {
			return nil, err
		}
		m.PlayerName = name
		m.RoomCode = strings.ToUpper(strings.TrimSpace(m.RoomCode))
		if m.RoomCode == "" {
			return nil, models.Errorf(models.CodeMalformedMessage, "roomId is required")
		}
		return m, nil

	case TypeStartGame:
		return StartGame{}, nil

	case TypeUpdateSettings:
		var m UpdateSettings
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		if m.Settings.Rounds == nil && m.Settings.DrawSeconds == nil {
			return nil, models.Errorf(models.CodeMalformedMessage, "settings are required")
		}
		return m, nil

	case TypeSelectWord:
		var m SelectWord
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		m.Word = strings.TrimSpace(m.Word)
		if m.Word == "" {
			return nil, models.Errorf(models.CodeMalformedMessage, "word is required")
		}
		return m, nil

	case TypeDrawData:
		var m DrawData
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		if len(m.Data) == 0 || string(m.Data) == "null" {
			return nil, models.Errorf(models.CodeMalformedMessage, "drawData is required")
		}
		return m, nil

	case TypeClearCanvas:
		return ClearCanvas{}, nil

	case TypeChat:
		var m Chat
		if err := unmarshalPayload(env.Payload, &m); err != nil {
			return nil, err
		}
		m.Message = strings.TrimSpace(m.Message)
		if m.Message == "" {
			return nil, models.Errorf(models.CodeMalformedMessage, "message is required")
		}
		if utf8.RuneCountInString(m.Message) > MaxChatLength {
			return nil, models.Errorf(models.CodeMalformedMessage, "message is too long")
		}
		return m, nil

	case TypeResetGame:
		return ResetGame{}, nil
	}

	return nil, models.Errorf(models.CodeUnknownMessageType, "unknown message type: "+env.Type)
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return models.Errorf(models.CodeMalformedMessage, "payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return models.Errorf(models.CodeMalformedMessage, "invalid payload")
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.Errorf(models.CodeMalformedMessage, "playerName is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", models.Errorf(models.CodeMalformedMessage, "playerName is too long")
	}
	return name, nil
}
