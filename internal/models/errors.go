// internal/models/errors.go
package models

// ErrorCode identifies a recoverable, per-request failure reported to a single connection.
type ErrorCode string

const (
	CodeRoomNotFound        ErrorCode = "RoomNotFound"
	CodeGameInProgress      ErrorCode = "GameInProgress"
	CodeRoomFull            ErrorCode = "RoomFull"
	CodeNameTaken           ErrorCode = "NameTaken"
	CodeNotAuthorized       ErrorCode = "NotAuthorized"
	CodeInsufficientPlayers ErrorCode = "InsufficientPlayers"
	CodeMalformedMessage    ErrorCode = "MalformedMessage"
	CodeUnknownMessageType  ErrorCode = "UnknownMessageType"
	CodeNotInRoom           ErrorCode = "NotInRoom"
	CodeAlreadyInRoom       ErrorCode = "AlreadyInRoom"
	CodeRateLimited         ErrorCode = "RateLimited"
	CodeInternal            ErrorCode = "Internal"
)

// Error is a coded request failure. Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Msg
}

// Is makes errors.Is match on the code alone, so a sentinel matches any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf builds a coded error with a specific message.
func Errorf(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

var (
	ErrRoomNotFound        = Errorf(CodeRoomNotFound, "room not found")
	ErrGameInProgress      = Errorf(CodeGameInProgress, "game already in progress")
	ErrRoomFull            = Errorf(CodeRoomFull, "room is full")
	ErrNameTaken           = Errorf(CodeNameTaken, "player name already taken in this room")
	ErrNotAuthorized       = Errorf(CodeNotAuthorized, "not allowed")
	ErrInsufficientPlayers = Errorf(CodeInsufficientPlayers, "at least two players are needed to start")
	ErrNotInRoom           = Errorf(CodeNotInRoom, "create or join a room first")
	ErrAlreadyInRoom       = Errorf(CodeAlreadyInRoom, "connection already belongs to a room")
)
