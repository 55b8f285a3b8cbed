package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskEngine wraps the Vosk offline recognizer behind Engine.
type VoskEngine struct {
	mu          sync.Mutex
	model       *vosk.VoskModel
	recognizer  *vosk.VoskRecognizer
	config      Config
	initialized bool
}

// voskPayload mirrors the JSON Vosk emits. Settled phrases carry Text
// and per-word scores; provisional text arrives in Partial.
type voskPayload struct {
	Text   string `json:"text"`
	Result []struct {
		Conf  float64 `json:"conf"`
		End   float64 `json:"end"`
		Start float64 `json:"start"`
		Word  string  `json:"word"`
	} `json:"result,omitempty"`
	Partial string `json:"partial,omitempty"`
}

func (p voskPayload) confidence() float64 {
	if len(p.Result) == 0 {
		return 0.0
	}
	var sum float64
	for _, word := range p.Result {
		sum += word.Conf
	}
	return sum / float64(len(p.Result))
}

// NewVoskEngine creates an uninitialized Vosk engine.
func NewVoskEngine() *VoskEngine {
	return &VoskEngine{}
}

// Initialize loads the model directory and builds a recognizer.
func (v *VoskEngine) Initialize(config Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return fmt.Errorf("engine already initialized")
	}

	vosk.SetLogLevel(-1) // silence vosk internals

	model, err := vosk.NewModel(config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", config.ModelPath, err)
	}
	if model == nil {
		return fmt.Errorf("failed to load model from %s: model returned nil", config.ModelPath)
	}

	recognizer, err := vosk.NewRecognizer(model, float64(config.SampleRate))
	if err != nil {
		model.Free()
		return fmt.Errorf("failed to create recognizer: %w", err)
	}

	// Word-level results carry the confidence scores
	recognizer.SetWords(1)

	v.model = model
	v.recognizer = recognizer
	v.config = config
	v.initialized = true
	return nil
}

// ProcessAudio feeds PCM into the recognizer and returns the current
// hypothesis, interim while the phrase is open and final once it
// settles.
func (v *VoskEngine) ProcessAudio(ctx context.Context, audioData []byte) (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if v.recognizer.AcceptWaveform(audioData) > 0 {
		return v.decodeFinal(v.recognizer.Result())
	}

	var payload voskPayload
	if err := json.Unmarshal([]byte(v.recognizer.PartialResult()), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse interim result: %w", err)
	}
	return &Result{Text: payload.Partial, Interim: true}, nil
}

// FinalResult flushes the recognizer, returning any pending text as a
// settled phrase.
func (v *VoskEngine) FinalResult() (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}
	return v.decodeFinal(v.recognizer.FinalResult())
}

func (v *VoskEngine) decodeFinal(raw string) (*Result, error) {
	var payload voskPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &Result{
		Text:       payload.Text,
		Confidence: payload.confidence(),
	}, nil
}

// Reset clears state between utterances. Vosk resets itself after
// FinalResult, so this only validates the engine.
func (v *VoskEngine) Reset() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return fmt.Errorf("engine not initialized")
	}
	return nil
}

// Close frees the recognizer and model.
func (v *VoskEngine) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil
	}
	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
	v.initialized = false
	return nil
}

// IsInitialized reports whether a model is loaded.
func (v *VoskEngine) IsInitialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}
