package speech

import (
	"context"

	"github.com/lexvoice/lexvoice/internal/audio"
	"github.com/lexvoice/lexvoice/internal/tts"
)

// PlayerSink plays synthesized audio through a local output device.
type PlayerSink struct {
	player *audio.Player
}

// NewPlayerSink wraps a started audio player.
func NewPlayerSink(player *audio.Player) *PlayerSink {
	return &PlayerSink{player: player}
}

// Play implements Sink.
func (s *PlayerSink) Play(chunk tts.AudioChunk) error {
	return s.player.Write(chunk.Data)
}

// Drain implements Sink. Play only queues audio; this blocks until the
// device has played the queue out.
func (s *PlayerSink) Drain(ctx context.Context) error {
	return s.player.Drain(ctx)
}

// Clear discards queued audio so interruption is instant.
func (s *PlayerSink) Clear() {
	s.player.Clear()
}
