package tts

import "context"

// Engine turns text into audio.
type Engine interface {
	// Initialize prepares the engine. Must be called before Synthesize.
	Initialize(config Config) error

	// Synthesize converts text to audio, delivering chunks through the
	// callback as they are produced so playback can start before
	// synthesis finishes.
	Synthesize(ctx context.Context, req SynthesizeRequest, callback AudioCallback) error

	// ListVoices returns the voices this engine can speak with.
	ListVoices() []Voice

	// Close releases resources.
	Close() error

	// IsInitialized reports whether the engine is ready.
	IsInitialized() bool
}

// Config holds engine setup.
type Config struct {
	// ModelPath is the directory holding voice model files.
	ModelPath string

	// DefaultVoice is used when a request names no voice.
	DefaultVoice string
}

// SynthesizeRequest carries one utterance and its voice parameters.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Rate  float32 // 1.0 normal, 2.0 double speed
	Pitch float32 // 1.0 normal
	// Volume scales amplitude, 0.0 silent to 1.0 full
	Volume float32
}

// AudioChunk is a slice of synthesized PCM.
type AudioChunk struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// AudioCallback receives chunks during synthesis. Returning an error
// aborts the synthesis.
type AudioCallback func(chunk AudioChunk) error

// Voice describes one installable voice.
type Voice struct {
	ID       string
	Name     string
	Language string
	Gender   string
}

// DefaultConfig returns an engine config rooted at modelPath.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:    modelPath,
		DefaultVoice: "default",
	}
}
