package recognition

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexvoice/lexvoice/internal/audio"
	"github.com/lexvoice/lexvoice/internal/stt"
)

type fakeCapturer struct {
	samples chan audio.AudioSample
	errs    chan error
	stopped bool
	mu      sync.Mutex
}

func newFakeCapturer() *fakeCapturer {
	return &fakeCapturer{
		samples: make(chan audio.AudioSample, 8),
		errs:    make(chan error, 1),
	}
}

func (c *fakeCapturer) Start(ctx context.Context) error { return nil }

func (c *fakeCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.samples)
		close(c.errs)
	}
	return nil
}

func (c *fakeCapturer) Samples() <-chan audio.AudioSample { return c.samples }
func (c *fakeCapturer) Errors() <-chan error              { return c.errs }

func (c *fakeCapturer) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped
}

type failingEngine struct {
	processErr error
}

func (e *failingEngine) Initialize(stt.Config) error { return nil }

func (e *failingEngine) ProcessAudio(ctx context.Context, audioData []byte) (*stt.Result, error) {
	return nil, e.processErr
}

func (e *failingEngine) FinalResult() (*stt.Result, error) { return nil, nil }
func (e *failingEngine) Reset() error                      { return nil }
func (e *failingEngine) Close() error                      { return nil }
func (e *failingEngine) IsInitialized() bool               { return true }

// recordingSink captures the event sequence a provider emits.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	codes  []string
	ended  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ended: make(chan struct{})}
}

func (s *recordingSink) SessionStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "started")
}

func (s *recordingSink) SessionResult(t Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "result")
}

func (s *recordingSink) SessionError(code string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "error")
	s.codes = append(s.codes, code)
}

func (s *recordingSink) SessionEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "ended")
	close(s.ended)
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func TestEngineFailureEndsSession(t *testing.T) {
	capturer := newFakeCapturer()
	engine := &failingEngine{processErr: errors.New("recognizer wedged")}

	cfg := DefaultLocalConfig()
	cfg.VADEnabled = false
	provider := NewLocalProvider(engine, cfg)
	provider.newCapturer = func(audio.CaptureConfig) (audio.Capturer, error) {
		return capturer, nil
	}

	sink := newRecordingSink()
	provider.Bind(sink)
	require.NoError(t, provider.Start())

	capturer.samples <- audio.AudioSample{Data: make([]byte, 960)}

	select {
	case <-sink.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after the engine failure")
	}

	events := sink.snapshot()
	require.Equal(t, []string{"started", "error", "ended"}, events)
	require.Equal(t, []string{CodeAborted}, sink.codes)

	// The session is fully torn down, so a fresh start must succeed
	// rather than reporting an already-running session.
	fresh := newFakeCapturer()
	provider.newCapturer = func(audio.CaptureConfig) (audio.Capturer, error) {
		return fresh, nil
	}
	sink2 := newRecordingSink()
	provider.Bind(sink2)
	require.NoError(t, provider.Start())
	require.NoError(t, provider.Close())
}
