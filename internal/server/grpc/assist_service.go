package grpc

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/lexvoice/lexvoice/internal/convo"
	"github.com/lexvoice/lexvoice/internal/legalqa"
	"github.com/lexvoice/lexvoice/internal/stt"
)

// AssistService implements the gRPC voice assist service: clients stream
// microphone audio and receive transcripts plus answered questions.
type AssistService struct {
	engine       stt.Engine
	client       *legalqa.Client
	jurisdiction string
	domain       string
	mu           sync.Mutex
}

// NewAssistService creates a new assist service
func NewAssistService(engine stt.Engine, client *legalqa.Client, jurisdiction, domain string) *AssistService {
	return &AssistService{
		engine:       engine,
		client:       client,
		jurisdiction: jurisdiction,
		domain:       domain,
	}
}

// AssistEvent is a server-to-client event
type AssistEvent struct {
	Type        string // "interim", "transcript", "answer", "suggestions", "error"
	Text        string
	Confidence  float32
	Suggestions []string
	SessionID   string
	TimestampMs int64
}

// AssistStream is the streaming interface for a bidirectional assist session
type AssistStream interface {
	Send(*AssistEvent) error
	Recv() (*AudioChunk, error)
	Context() context.Context
}

// Converse handles one bidirectional assist session. Audio flows in,
// transcripts and answers flow out. Each EndOfUtterance boundary closes
// one question and queries the backend.
// This will be updated to use generated proto types once protoc runs.
func (a *AssistService) Converse(stream AssistStream) error {
	ctx := stream.Context()

	orchestrator := convo.NewOrchestrator(a.client, nil, a.jurisdiction, a.domain)
	orchestrator.SetListeners(convo.Listeners{
		OnMessage: func(msg convo.Message) {
			switch msg.Type {
			case convo.MessageAssistant:
				stream.Send(&AssistEvent{
					Type:        "answer",
					Text:        msg.Content,
					Confidence:  float32(msg.Confidence),
					TimestampMs: time.Now().UnixMilli(),
				})
			case convo.MessageError:
				stream.Send(&AssistEvent{
					Type:        "error",
					Text:        msg.Content,
					TimestampMs: time.Now().UnixMilli(),
				})
			}
		},
		OnSuggestions: func(suggestions []string) {
			stream.Send(&AssistEvent{
				Type:        "suggestions",
				Suggestions: suggestions,
				TimestampMs: time.Now().UnixMilli(),
			})
		},
	})

	stream.Send(&AssistEvent{
		Type:        "connected",
		SessionID:   orchestrator.SessionID(),
		TimestampMs: time.Now().UnixMilli(),
	})

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			a.answerPending(ctx, stream, orchestrator)
			return nil
		}
		if err != nil {
			return err
		}

		a.mu.Lock()
		result, err := a.engine.ProcessAudio(ctx, chunk.Data)
		a.mu.Unlock()
		if err != nil {
			return err
		}

		if result != nil && result.Interim && result.Text != "" {
			stream.Send(&AssistEvent{
				Type:        "interim",
				Text:        result.Text,
				TimestampMs: time.Now().UnixMilli(),
			})
		}

		if chunk.EndOfUtterance {
			a.answerPending(ctx, stream, orchestrator)
		}
	}
}

// answerPending finalizes the current utterance and runs one turn
func (a *AssistService) answerPending(ctx context.Context, stream AssistStream, orchestrator *convo.Orchestrator) {
	a.mu.Lock()
	finalResult, err := a.engine.FinalResult()
	a.engine.Reset()
	a.mu.Unlock()
	if err != nil || finalResult.Text == "" {
		return
	}

	stream.Send(&AssistEvent{
		Type:        "transcript",
		Text:        finalResult.Text,
		Confidence:  float32(finalResult.Confidence),
		TimestampMs: time.Now().UnixMilli(),
	})

	orchestrator.Turn(ctx, finalResult.Text)
}
