package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lexvoice/lexvoice/internal/convo"
)

// Console renders the conversation on a terminal
type Console struct {
	mu            sync.Mutex
	writer        io.Writer
	showTimestamp bool
	showMetadata  bool
}

// ConsoleConfig configures console output behavior
type ConsoleConfig struct {
	// ShowTimestamp prefixes each line with a timestamp
	ShowTimestamp bool

	// ShowMetadata displays additional metadata (confidence, sources)
	ShowMetadata bool

	// Writer is the output destination (default: os.Stdout)
	Writer io.Writer
}

// NewConsole creates a new console output handler
func NewConsole(config ConsoleConfig) *Console {
	writer := config.Writer
	if writer == nil {
		writer = os.Stdout
	}

	return &Console{
		writer:        writer,
		showTimestamp: config.ShowTimestamp,
		showMetadata:  config.ShowMetadata,
	}
}

// DefaultConsole creates a console with default settings
func DefaultConsole() *Console {
	return NewConsole(ConsoleConfig{
		ShowTimestamp: true,
		ShowMetadata:  false,
		Writer:        os.Stdout,
	})
}

// WriteMessage renders one conversation message
func (c *Console) WriteMessage(msg convo.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	timestamp := ""
	if c.showTimestamp {
		timestamp = fmt.Sprintf("[%s] ", msg.Timestamp.Format("15:04:05"))
	}

	label := roleLabel(msg.Type)

	metadata := ""
	if c.showMetadata && msg.Type == convo.MessageAssistant {
		if msg.Confidence > 0 {
			metadata = fmt.Sprintf(" (confidence: %.2f)", msg.Confidence)
		}
		if len(msg.Sources) > 0 {
			metadata += fmt.Sprintf(" [sources: %s]", strings.Join(msg.Sources, ", "))
		}
	}

	fmt.Fprintf(c.writer, "%s%s %s%s\n", timestamp, label, msg.Content, metadata)
	return nil
}

// WriteInterim writes an in-progress transcript, overwriting the
// current line
func (c *Console) WriteInterim(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "\r... %s", text)
	return nil
}

// WriteSuggestions renders follow-up prompts
func (c *Console) WriteSuggestions(suggestions []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(suggestions) == 0 {
		return nil
	}

	fmt.Fprintln(c.writer, "You could ask:")
	for _, s := range suggestions {
		fmt.Fprintf(c.writer, "  - %s\n", s)
	}
	return nil
}

// Clear clears the current line
func (c *Console) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "\r%80s\r", " ") // Clear line
	return nil
}

// Info writes an informational message
func (c *Console) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "[INFO] %s\n", msg)
}

// Error writes an error message to stderr
func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(os.Stderr, "[ERROR] %s\n", msg)
}

// Status writes a status message (typically overwritten)
func (c *Console) Status(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "\r[*] %s [%s]", msg, time.Now().Format("15:04:05"))
}

func roleLabel(t convo.MessageType) string {
	switch t {
	case convo.MessageUser:
		return "You:"
	case convo.MessageAssistant:
		return "Assistant:"
	case convo.MessageError:
		return "Error:"
	default:
		return "System:"
	}
}
