package recognition

import (
	"context"
	"fmt"
	"sync"

	"github.com/lexvoice/lexvoice/internal/audio"
	"github.com/lexvoice/lexvoice/internal/stt"
)

// LocalConfig configures the microphone-backed provider.
type LocalConfig struct {
	Capture    audio.CaptureConfig
	VAD        audio.VADConfig
	VADEnabled bool
}

// DefaultLocalConfig returns a local provider configuration suited to
// conversational turns: short utterances finalized after a brief pause.
func DefaultLocalConfig() LocalConfig {
	vad := audio.DefaultVADConfig()
	vad.SilenceFrames = 40 // ~1.2s of silence ends an utterance
	return LocalConfig{
		Capture:    audio.DefaultConfig(),
		VAD:        vad,
		VADEnabled: true,
	}
}

// LocalProvider runs recognition sessions over the local microphone:
// malgo capture feeds the STT engine, with energy-based VAD finalizing
// utterances at silence boundaries. A fresh capturer is created per
// session so stopped sessions never leak device handles.
type LocalProvider struct {
	cfg    LocalConfig
	engine stt.Engine

	// newCapturer is swapped for a fake in tests.
	newCapturer func(audio.CaptureConfig) (audio.Capturer, error)

	mu       sync.Mutex
	sink     EventSink
	capturer audio.Capturer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
}

// NewLocalProvider creates a provider over an initialized STT engine.
func NewLocalProvider(engine stt.Engine, cfg LocalConfig) *LocalProvider {
	return &LocalProvider{cfg: cfg, engine: engine, newCapturer: audio.NewCapturer}
}

// Bind implements Provider.
func (p *LocalProvider) Bind(sink EventSink) {
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
}

// Start implements Provider.
func (p *LocalProvider) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("recognition: session already running")
	}
	if p.sink == nil {
		p.mu.Unlock()
		return fmt.Errorf("recognition: no event sink bound")
	}
	capturer, err := p.newCapturer(p.cfg.Capture)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("create capturer: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := capturer.Start(ctx); err != nil {
		cancel()
		p.mu.Unlock()
		return fmt.Errorf("start capture: %w", err)
	}
	p.capturer = capturer
	p.cancel = cancel
	p.running = true
	sink := p.sink
	p.mu.Unlock()

	sink.SessionStarted()
	p.wg.Add(1)
	go p.run(ctx, capturer, sink)
	return nil
}

// Stop implements Provider. Teardown completes asynchronously; the sink
// receives SessionEnded once the session goroutine drains.
func (p *LocalProvider) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.mu.Unlock()
	cancel()
	return nil
}

// Close implements Provider.
func (p *LocalProvider) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	p.wg.Wait()
	return nil
}

// run is the per-session loop: samples in, transcripts out.
func (p *LocalProvider) run(ctx context.Context, capturer audio.Capturer, sink EventSink) {
	defer p.wg.Done()

	var vad *audio.VAD
	if p.cfg.VADEnabled {
		vad = audio.NewVAD(p.cfg.VAD)
	}

	samples := capturer.Samples()
	errs := capturer.Errors()

	for {
		select {
		case <-ctx.Done():
			p.finish(capturer, sink)
			return

		case sample, ok := <-samples:
			if !ok {
				p.finish(capturer, sink)
				return
			}
			if vad != nil {
				speaking, _, ended := vad.ProcessFrame(sample.Data)
				if ended {
					p.emitFinal(sink)
					_ = p.engine.Reset()
					continue
				}
				if !speaking {
					continue
				}
			}
			result, err := p.engine.ProcessAudio(ctx, sample.Data)
			if err != nil {
				// The engine is wedged for this session. Surface the
				// error, then end the session so a restart opens against
				// a torn-down provider rather than a live one.
				sink.SessionError(CodeAborted, err)
				_ = p.Stop()
				continue
			}
			if result == nil || result.Text == "" {
				continue
			}
			sink.SessionResult(Transcript{
				Text:       result.Text,
				Interim:    result.Interim,
				Confidence: result.Confidence,
			})

		case _, ok := <-errs:
			// Sample buffer overflow is non-fatal; the next frame
			// resynchronizes the stream.
			if !ok {
				errs = nil
			}
		}
	}
}

// finish flushes the engine, tears the capturer down, and signals end.
func (p *LocalProvider) finish(capturer audio.Capturer, sink EventSink) {
	p.emitFinal(sink)
	_ = capturer.Stop()

	p.mu.Lock()
	p.running = false
	p.capturer = nil
	p.cancel = nil
	p.mu.Unlock()

	sink.SessionEnded()
}

func (p *LocalProvider) emitFinal(sink EventSink) {
	result, err := p.engine.FinalResult()
	if err != nil || result == nil || result.Text == "" {
		return
	}
	sink.SessionResult(Transcript{
		Text:       result.Text,
		Confidence: result.Confidence,
	})
}
