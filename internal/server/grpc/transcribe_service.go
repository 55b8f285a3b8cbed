package grpc

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/lexvoice/lexvoice/internal/stt"
)

// TranscribeService implements the gRPC transcription service
type TranscribeService struct {
	engine stt.Engine
	mu     sync.Mutex
}

// NewTranscribeService creates a new transcription service
func NewTranscribeService(engine stt.Engine) *TranscribeService {
	return &TranscribeService{engine: engine}
}

// AudioChunk represents incoming audio data
type AudioChunk struct {
	Data       []byte
	SampleRate int32
	Channels   int32

	// EndOfUtterance marks the client-detected end of one spoken turn
	EndOfUtterance bool
}

// TranscriptResult represents a transcription result
type TranscriptResult struct {
	Text        string
	IsFinal     bool
	Confidence  float32
	TimestampMs int64
}

// TranscribeStream is the streaming interface for bidirectional transcription
type TranscribeStream interface {
	Send(*TranscriptResult) error
	Recv() (*AudioChunk, error)
	Context() context.Context
}

// Transcribe handles bidirectional streaming transcription
// This will be updated to use generated proto types once protoc runs
func (s *TranscribeService) Transcribe(stream TranscribeStream) error {
	ctx := stream.Context()

	for {
		select {
		case <-ctx.Done():
			s.sendFinal(stream)
			return ctx.Err()

		default:
			chunk, err := stream.Recv()
			if err == io.EOF {
				// Client closed stream, send final result
				s.sendFinal(stream)
				return nil
			}
			if err != nil {
				return err
			}

			// Process audio chunk
			s.mu.Lock()
			result, err := s.engine.ProcessAudio(ctx, chunk.Data)
			s.mu.Unlock()
			if err != nil {
				return err
			}

			if result != nil && result.Text != "" {
				stream.Send(&TranscriptResult{
					Text:        result.Text,
					IsFinal:     !result.Interim,
					Confidence:  float32(result.Confidence),
					TimestampMs: time.Now().UnixMilli(),
				})
			}

			if chunk.EndOfUtterance {
				s.sendFinal(stream)
				s.mu.Lock()
				s.engine.Reset()
				s.mu.Unlock()
			}
		}
	}
}

// sendFinal flushes the engine's pending utterance as a final result
func (s *TranscribeService) sendFinal(stream TranscribeStream) {
	s.mu.Lock()
	finalResult, err := s.engine.FinalResult()
	s.mu.Unlock()
	if err == nil && finalResult.Text != "" {
		stream.Send(&TranscriptResult{
			Text:        finalResult.Text,
			IsFinal:     true,
			Confidence:  float32(finalResult.Confidence),
			TimestampMs: time.Now().UnixMilli(),
		})
	}
}
