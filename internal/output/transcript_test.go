package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexvoice/lexvoice/internal/convo"
)

func sampleMessage(msgType convo.MessageType, content string) convo.Message {
	return convo.Message{
		ID:        "msg-1",
		Type:      msgType,
		Content:   content,
		Timestamp: time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC),
	}
}

func TestJSONExporterEncodesMessages(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONExporter(&buf)

	msg := sampleMessage(convo.MessageUser, "What is consideration?")
	require.NoError(t, exporter.WriteMessage(msg))

	answer := sampleMessage(convo.MessageAssistant, "Consideration is something of value.")
	answer.Confidence = 0.92
	answer.Sources = []string{"Restatement (Second) of Contracts"}
	require.NoError(t, exporter.WriteMessage(answer))

	require.NoError(t, exporter.Flush())
	require.NoError(t, exporter.Close())

	require.Len(t, exporter.Messages(), 2)

	decoder := json.NewDecoder(&buf)
	var first, second convo.Message
	require.NoError(t, decoder.Decode(&first))
	require.NoError(t, decoder.Decode(&second))

	require.Equal(t, msg, first)
	require.Equal(t, answer, second)
	require.InDelta(t, 0.92, second.Confidence, 1e-9)
}

func TestJSONExporterEncodesEvents(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONExporter(&buf)

	require.NoError(t, exporter.WriteEvent("session_start", "session abc"))

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Equal(t, "session_start", event["type"])
	require.Equal(t, "session abc", event["message"])
	require.Contains(t, event, "timestamp")
}

func TestTextExporterFormatsLines(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewTextExporter(&buf)

	require.NoError(t, exporter.WriteMessage(sampleMessage(convo.MessageUser, "Can I break a lease early?")))
	require.NoError(t, exporter.WriteMessage(sampleMessage(convo.MessageError, "backend unreachable")))
	require.NoError(t, exporter.Flush())
	require.NoError(t, exporter.Close())

	out := buf.String()
	require.Contains(t, out, "[14:30:05] You: Can I break a lease early?")
	require.Contains(t, out, "[14:30:05] Error: backend unreachable")
}

func TestTextExporterEvents(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewTextExporter(&buf)

	require.NoError(t, exporter.WriteEvent("reset", "conversation cleared"))
	require.Contains(t, buf.String(), "[reset] conversation cleared")
}

func TestNewExporterSelectsFormat(t *testing.T) {
	var buf bytes.Buffer

	exporter, err := NewExporter("json", &buf)
	require.NoError(t, err)
	require.IsType(t, &JSONExporter{}, exporter)

	exporter, err = NewExporter("text", &buf)
	require.NoError(t, err)
	require.IsType(t, &TextExporter{}, exporter)

	// An unset format falls back to plain text.
	exporter, err = NewExporter("", &buf)
	require.NoError(t, err)
	require.IsType(t, &TextExporter{}, exporter)

	_, err = NewExporter("xml", &buf)
	require.Error(t, err)
}
