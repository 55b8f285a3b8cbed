package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lexvoice/lexvoice/internal/tts"
)

// Settings are the user's voice output preferences. They apply to the
// next utterance; changing them never affects audio already playing.
type Settings struct {
	Voice  string
	Rate   float32
	Pitch  float32
	Volume float32
}

// DefaultSettings returns neutral voice settings.
func DefaultSettings() Settings {
	return Settings{Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Sink consumes synthesized audio chunks. Play may queue ahead of the
// device; Drain marks the point where the queue has actually been
// heard. Sinks that also implement Clear() have queued audio discarded
// instantly on interruption.
type Sink interface {
	Play(chunk tts.AudioChunk) error

	// Drain blocks until all queued audio has been played out or the
	// context is cancelled.
	Drain(ctx context.Context) error
}

// Listeners receive speaker notifications. Nil functions are skipped.
type Listeners struct {
	// OnDone fires when an utterance finishes, naturally or by
	// interruption. It does not fire for utterances replaced by a
	// newer Speak call.
	OnDone func(interrupted bool)

	// OnError fires when synthesis or playback fails.
	OnError func(err error)
}

// Config holds speaker tuning.
type Config struct {
	// InterruptCooldown is how long the interrupted flag holds after
	// the user cuts output off, so auto-resume does not re-trigger.
	InterruptCooldown time.Duration
}

// DefaultConfig returns the default speaker tuning.
func DefaultConfig() Config {
	return Config{InterruptCooldown: 1 * time.Second}
}

type stopper interface {
	Stop() bool
}

type scheduleFunc func(d time.Duration, fn func()) stopper

func afterFunc(d time.Duration, fn func()) stopper {
	return time.AfterFunc(d, fn)
}

// Speaker serializes spoken responses. A new Speak call replaces any
// in-flight utterance, and Interrupt cancels output immediately when
// user speech is detected over it.
type Speaker struct {
	mu        sync.Mutex
	engine    tts.Engine
	sink      Sink
	cfg       Config
	settings  Settings
	listeners Listeners
	schedule  scheduleFunc

	speaking      bool
	interrupted   bool
	generation    int
	cancel        context.CancelFunc
	cooldownTimer stopper
}

// NewSpeaker creates a speaker over an initialized TTS engine and sink.
func NewSpeaker(engine tts.Engine, sink Sink, cfg Config) *Speaker {
	if cfg.InterruptCooldown <= 0 {
		cfg.InterruptCooldown = DefaultConfig().InterruptCooldown
	}
	return &Speaker{
		engine:   engine,
		sink:     sink,
		cfg:      cfg,
		settings: DefaultSettings(),
		schedule: afterFunc,
	}
}

// SetListeners replaces the notification callbacks. Call before Speak.
func (s *Speaker) SetListeners(l Listeners) {
	s.mu.Lock()
	s.listeners = l
	s.mu.Unlock()
}

// SetSettings replaces the voice settings for subsequent utterances.
func (s *Speaker) SetSettings(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Settings returns the current voice settings.
func (s *Speaker) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Speak synthesizes and plays the given text, cancelling any utterance
// already in flight. Playback runs asynchronously; Listeners.OnDone
// fires only after the sink has played the audio out.
func (s *Speaker) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		// Replace the in-flight utterance
		s.cancel()
	}
	utterCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	gen := s.generation
	s.speaking = true
	req := tts.SynthesizeRequest{
		Text:   text,
		Voice:  s.settings.Voice,
		Rate:   s.settings.Rate,
		Pitch:  s.settings.Pitch,
		Volume: s.settings.Volume,
	}
	s.mu.Unlock()

	go s.run(utterCtx, gen, req)
}

func (s *Speaker) run(ctx context.Context, gen int, req tts.SynthesizeRequest) {
	err := s.engine.Synthesize(ctx, req, func(chunk tts.AudioChunk) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return s.sink.Play(chunk)
	})
	if err == nil {
		// Synthesize returns when the last chunk is queued, not when it
		// is heard. Completion must wait for the sink to play out, or
		// the microphone reopens over our own audio.
		err = s.sink.Drain(ctx)
	}

	s.mu.Lock()
	if gen != s.generation {
		// A newer utterance superseded this one
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.cancel = nil
	interrupted := s.interrupted || errors.Is(err, context.Canceled)
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		if s.listeners.OnError != nil {
			s.listeners.OnError(err)
		}
		return
	}
	if s.listeners.OnDone != nil {
		s.listeners.OnDone(interrupted)
	}
}

// Interrupt cancels playback immediately in response to user speech.
// The interrupted flag holds for the configured cooldown so the
// resume-after-speech logic does not re-trigger off the tail end.
func (s *Speaker) Interrupt() {
	s.mu.Lock()
	if !s.speaking {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.interrupted = true
	if s.cooldownTimer != nil {
		s.cooldownTimer.Stop()
	}
	s.cooldownTimer = s.schedule(s.cfg.InterruptCooldown, s.clearInterrupted)
	s.mu.Unlock()

	if clearer, ok := s.sink.(interface{ Clear() }); ok {
		clearer.Clear()
	}
}

func (s *Speaker) clearInterrupted() {
	s.mu.Lock()
	s.interrupted = false
	s.cooldownTimer = nil
	s.mu.Unlock()
}

// Stop cancels any in-flight utterance without marking an interruption.
// Used on shutdown.
func (s *Speaker) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.speaking = false
	s.generation++
	s.mu.Unlock()

	if clearer, ok := s.sink.(interface{ Clear() }); ok {
		clearer.Clear()
	}
}

// Speaking reports whether an utterance is currently playing.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Interrupted reports whether the cooldown after a user interruption is
// still in effect.
func (s *Speaker) Interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interrupted
}
