package server

// MessageType represents a WebSocket message type
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeStart        MessageType = "start"
	MessageTypeChoose       MessageType = "choose"
	MessageTypeReset        MessageType = "reset"
	MessageTypeHistory      MessageType = "history"
	MessageTypeClearHistory MessageType = "clear_history"
	MessageTypeShare        MessageType = "share"

	// Server to client messages
	MessageTypeState     MessageType = "state"
	MessageTypeRound     MessageType = "round"
	MessageTypeCountdown MessageType = "countdown"
	MessageTypeComplete  MessageType = "complete"
	MessageTypeError     MessageType = "error"
	// history and share replies reuse the request type names
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeInvalidChoice  = "invalid_choice"
	ErrCodeInvalidReset   = "invalid_reset"
	ErrCodeSessionOver    = "session_over"
	ErrCodeHistoryFailed  = "history_failed"
)
