package convo

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a conversation entry.
type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
	MessageSystem    MessageType = "system"
	MessageError     MessageType = "error"
)

// Message is a single conversation entry. Messages are immutable once
// appended and live only for the session.
type Message struct {
	ID         string      `json:"id"`
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	Confidence float64     `json:"confidence,omitempty"`
	Sources    []string    `json:"sources,omitempty"`
}

func newMessage(t MessageType, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      t,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Log is the append-only, in-memory conversation record.
type Log struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message to the log.
func (l *Log) Append(m Message) {
	l.mu.Lock()
	l.msgs = append(l.msgs, m)
	l.mu.Unlock()
}

// Messages returns a copy of the log contents.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	l.msgs = nil
	l.mu.Unlock()
}
