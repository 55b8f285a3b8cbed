package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexvoice/lexvoice/internal/tts"
)

// fakeEngine records requests and emits a single audio chunk. When
// blockFirst is set, the first Synthesize call parks until cancelled.
type fakeEngine struct {
	mu         sync.Mutex
	requests   []tts.SynthesizeRequest
	err        error
	blockFirst bool
}

func (e *fakeEngine) Initialize(config tts.Config) error { return nil }
func (e *fakeEngine) Close() error                       { return nil }
func (e *fakeEngine) IsInitialized() bool                { return true }
func (e *fakeEngine) ListVoices() []tts.Voice            { return nil }

func (e *fakeEngine) Synthesize(ctx context.Context, req tts.SynthesizeRequest, callback tts.AudioCallback) error {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	first := len(e.requests) == 1
	e.mu.Unlock()

	if e.blockFirst && first {
		<-ctx.Done()
		return ctx.Err()
	}
	if e.err != nil {
		return e.err
	}
	return callback(tts.AudioChunk{Data: []byte{1, 2, 3}, SampleRate: 22050, Channels: 1})
}

// fakeSink records playback calls. When release is set, Drain parks
// until the channel closes, simulating queued audio still playing.
type fakeSink struct {
	mu      sync.Mutex
	chunks  int
	cleared int
	drains  int
	release chan struct{}
}

func (s *fakeSink) Play(chunk tts.AudioChunk) error {
	s.mu.Lock()
	s.chunks++
	s.mu.Unlock()
	return nil
}

func (s *fakeSink) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.drains++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *fakeSink) draining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drains > 0
}

func (s *fakeSink) Clear() {
	s.mu.Lock()
	s.cleared++
	s.mu.Unlock()
}

func waitDone(t *testing.T, done chan bool) bool {
	t.Helper()
	select {
	case v := <-done:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnDone")
		return false
	}
}

func TestSpeakPlaysAndReportsDone(t *testing.T) {
	engine := &fakeEngine{}
	sink := &fakeSink{}
	s := NewSpeaker(engine, sink, DefaultConfig())
	s.SetSettings(Settings{Voice: "amy", Rate: 1.2, Pitch: 0.9, Volume: 0.5})

	done := make(chan bool, 1)
	s.SetListeners(Listeners{OnDone: func(interrupted bool) { done <- interrupted }})

	s.Speak(context.Background(), "you have the right to remain silent")

	require.False(t, waitDone(t, done), "a natural finish is not an interruption")
	require.Equal(t, 1, sink.chunks)
	require.False(t, s.Speaking())

	require.Len(t, engine.requests, 1)
	req := engine.requests[0]
	require.Equal(t, "amy", req.Voice)
	require.InDelta(t, 1.2, req.Rate, 1e-6)
	require.InDelta(t, 0.9, req.Pitch, 1e-6)
	require.InDelta(t, 0.5, req.Volume, 1e-6)
}

func TestDoneWaitsForSinkPlayout(t *testing.T) {
	engine := &fakeEngine{}
	sink := &fakeSink{release: make(chan struct{})}
	s := NewSpeaker(engine, sink, DefaultConfig())

	done := make(chan bool, 1)
	s.SetListeners(Listeners{OnDone: func(interrupted bool) { done <- interrupted }})

	s.Speak(context.Background(), "the statute of limitations varies by state")

	// Synthesis has finished and all chunks are queued, but the sink is
	// still playing them out
	require.Eventually(t, sink.draining, time.Second, 5*time.Millisecond)
	select {
	case <-done:
		t.Fatal("done must not fire while queued audio is still playing")
	case <-time.After(50 * time.Millisecond):
	}
	require.True(t, s.Speaking(), "the utterance is still audible")

	close(sink.release)
	require.False(t, waitDone(t, done))
	require.False(t, s.Speaking())
}

func TestInterruptDuringPlayoutReportsInterrupted(t *testing.T) {
	engine := &fakeEngine{}
	sink := &fakeSink{release: make(chan struct{})}
	s := NewSpeaker(engine, sink, DefaultConfig())

	done := make(chan bool, 1)
	s.SetListeners(Listeners{OnDone: func(interrupted bool) { done <- interrupted }})

	s.Speak(context.Background(), "a lengthy recitation of the facts")
	require.Eventually(t, sink.draining, time.Second, 5*time.Millisecond)

	s.Interrupt()

	require.True(t, waitDone(t, done), "cutting off queued audio is an interruption")
	require.Equal(t, 1, sink.cleared)
	require.False(t, s.Speaking())
}

func TestSpeakIgnoresEmptyText(t *testing.T) {
	engine := &fakeEngine{}
	s := NewSpeaker(engine, &fakeSink{}, DefaultConfig())

	s.Speak(context.Background(), "   ")

	require.False(t, s.Speaking())
	require.Empty(t, engine.requests)
}

func TestInterruptCancelsAndClearsSink(t *testing.T) {
	engine := &fakeEngine{blockFirst: true}
	sink := &fakeSink{}
	s := NewSpeaker(engine, sink, DefaultConfig())

	done := make(chan bool, 1)
	s.SetListeners(Listeners{OnDone: func(interrupted bool) { done <- interrupted }})

	s.Speak(context.Background(), "a very long disclaimer")
	require.True(t, s.Speaking())

	s.Interrupt()

	require.True(t, waitDone(t, done), "an interrupt must be reported as such")
	require.True(t, s.Interrupted(), "the cooldown flag holds after an interrupt")
	require.Equal(t, 1, sink.cleared, "queued audio is flushed on interrupt")
	require.False(t, s.Speaking())
}

func TestInterruptCooldownExpires(t *testing.T) {
	engine := &fakeEngine{blockFirst: true}
	s := NewSpeaker(engine, &fakeSink{}, Config{InterruptCooldown: 20 * time.Millisecond})

	s.Speak(context.Background(), "something")
	s.Interrupt()
	require.True(t, s.Interrupted())

	require.Eventually(t, func() bool { return !s.Interrupted() },
		time.Second, 5*time.Millisecond)
}

func TestInterruptWhileSilentIsNoOp(t *testing.T) {
	sink := &fakeSink{}
	s := NewSpeaker(&fakeEngine{}, sink, DefaultConfig())

	s.Interrupt()

	require.False(t, s.Interrupted())
	require.Zero(t, sink.cleared)
}

func TestNewSpeakReplacesInFlightUtterance(t *testing.T) {
	engine := &fakeEngine{blockFirst: true}
	sink := &fakeSink{}
	s := NewSpeaker(engine, sink, DefaultConfig())

	done := make(chan bool, 4)
	s.SetListeners(Listeners{OnDone: func(interrupted bool) { done <- interrupted }})

	s.Speak(context.Background(), "first answer")
	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.requests) == 1
	}, time.Second, 5*time.Millisecond)

	s.Speak(context.Background(), "second answer")

	require.False(t, waitDone(t, done), "only the replacement utterance reports done")
	require.False(t, s.Speaking())

	select {
	case <-done:
		t.Fatal("the superseded utterance must not report done")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSynthesisErrorReported(t *testing.T) {
	engine := &fakeEngine{err: errors.New("model not loaded")}
	s := NewSpeaker(engine, &fakeSink{}, DefaultConfig())

	errs := make(chan error, 1)
	s.SetListeners(Listeners{OnError: func(err error) { errs <- err }})

	s.Speak(context.Background(), "anything")

	select {
	case err := <-errs:
		require.ErrorContains(t, err, "model not loaded")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnError")
	}
	require.False(t, s.Speaking())
}
