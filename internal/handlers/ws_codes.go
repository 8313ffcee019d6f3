// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game socket.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client requested subprotocols without "sketch".
	SlowConsumerError   websocket.StatusCode = 3001 // Client fell too far behind on outbound messages.
)
