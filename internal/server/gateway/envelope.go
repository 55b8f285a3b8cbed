package gateway

import "github.com/lexvoice/lexvoice/internal/convo"

// Incoming is a client-to-gateway message
type Incoming struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Incoming message types
const (
	IncomingAsk   = "ask"
	IncomingReset = "reset"
)

// Event is a gateway-to-client message
type Event struct {
	Type        string         `json:"type"`
	SessionID   string         `json:"session_id,omitempty"`
	Message     *convo.Message `json:"message,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Topic       string         `json:"topic,omitempty"`
	Text        string         `json:"text,omitempty"`
	Processing  bool           `json:"processing,omitempty"`
}

// Event types
const (
	EventConnected   = "connected"
	EventMessage     = "message"
	EventProcessing  = "processing"
	EventSuggestions = "suggestions"
	EventTopic       = "topic"
	EventSpeak       = "speak"
	EventReset       = "reset"
	EventError       = "error"
)
