package stt

import "context"

// Result is one recognition hypothesis. Interim results are
// provisional and may be revised; a final result settles the phrase.
type Result struct {
	Text       string
	Interim    bool
	Confidence float64 // 0.0 to 1.0
}

// Config holds recognizer setup.
type Config struct {
	// ModelPath points at the model directory on disk.
	ModelPath string

	// SampleRate of the incoming PCM, in Hz.
	SampleRate int
}

// Engine transcribes a stream of 16-bit PCM audio.
type Engine interface {
	// Initialize loads the model and prepares the recognizer.
	Initialize(config Config) error

	// ProcessAudio feeds audio in and returns a result when the
	// recognizer has one, interim or final.
	ProcessAudio(ctx context.Context, audioData []byte) (*Result, error)

	// FinalResult flushes the recognizer and returns whatever text is
	// pending as a final result.
	FinalResult() (*Result, error)

	// Reset clears recognizer state between utterances.
	Reset() error

	// Close releases the model and recognizer.
	Close() error

	// IsInitialized reports whether Initialize has succeeded.
	IsInitialized() bool
}

// DefaultConfig returns a config for the given model at the 16kHz
// rate the capture pipeline produces.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:  modelPath,
		SampleRate: 16000,
	}
}
