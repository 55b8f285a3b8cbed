package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lexvoice/lexvoice/internal/convo"
)

// Exporter writes a conversation transcript to a destination
type Exporter interface {
	// WriteMessage appends one message to the transcript
	WriteMessage(msg convo.Message) error

	// WriteEvent records a system event (session start, errors)
	WriteEvent(eventType, message string) error

	// Flush ensures all buffered output is written
	Flush() error

	// Close closes the exporter and releases resources
	Close() error
}

// NewExporter creates an exporter for the named format, "json" or
// "text".
func NewExporter(format string, writer io.Writer) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(writer), nil
	case "text", "":
		return NewTextExporter(writer), nil
	default:
		return nil, fmt.Errorf("unknown transcript format %q", format)
	}
}

// transcriptEvent represents a system event in an exported transcript
type transcriptEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JSONExporter writes the transcript as a JSON stream
type JSONExporter struct {
	writer   io.Writer
	encoder  *json.Encoder
	messages []convo.Message
}

// NewJSONExporter creates a new JSON transcript exporter
func NewJSONExporter(writer io.Writer) *JSONExporter {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return &JSONExporter{
		writer:   writer,
		encoder:  encoder,
		messages: make([]convo.Message, 0),
	}
}

// WriteMessage appends one message to the transcript
func (j *JSONExporter) WriteMessage(msg convo.Message) error {
	j.messages = append(j.messages, msg)
	return j.encoder.Encode(msg)
}

// WriteEvent records a system event
func (j *JSONExporter) WriteEvent(eventType, message string) error {
	event := transcriptEvent{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
	return j.encoder.Encode(event)
}

// Flush ensures all buffered output is written
func (j *JSONExporter) Flush() error {
	// JSON encoder writes immediately, nothing to flush
	return nil
}

// Close closes the exporter
func (j *JSONExporter) Close() error {
	return nil
}

// Messages returns all exported messages
func (j *JSONExporter) Messages() []convo.Message {
	return j.messages
}

// TextExporter writes the transcript as plain text
type TextExporter struct {
	writer io.Writer
}

// NewTextExporter creates a new plain text transcript exporter
func NewTextExporter(writer io.Writer) *TextExporter {
	return &TextExporter{
		writer: writer,
	}
}

// WriteMessage appends one message to the transcript
func (t *TextExporter) WriteMessage(msg convo.Message) error {
	timestamp := msg.Timestamp.Format("15:04:05")
	line := fmt.Sprintf("[%s] %s %s\n", timestamp, roleLabel(msg.Type), msg.Content)

	_, err := t.writer.Write([]byte(line))
	return err
}

// WriteEvent records a system event
func (t *TextExporter) WriteEvent(eventType, message string) error {
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, eventType, message)
	_, err := t.writer.Write([]byte(line))
	return err
}

// Flush ensures all buffered output is written
func (t *TextExporter) Flush() error {
	return nil
}

// Close closes the exporter
func (t *TextExporter) Close() error {
	return nil
}
