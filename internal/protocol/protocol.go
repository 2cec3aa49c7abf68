// Package protocol defines the WebSocket message types of the status API.
package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus carries a periodic bridge status snapshot
	TypeStatus MessageType = "status"

	// TypeMode notifies subscribers of a movement-mode change
	TypeMode MessageType = "mode"

	// TypePause is sent by clients to pause or resume conversion
	TypePause MessageType = "pause"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ModePayload is the payload for TypeMode
type ModePayload struct {
	// Mode is "pulse" or "hold"
	Mode string `json:"mode"`
}

// PausePayload is the payload for TypePause
type PausePayload struct {
	Paused bool `json:"paused"`
}
