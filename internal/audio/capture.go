package audio

import (
	"context"
	"time"
)

// CaptureConfig tunes microphone capture.
type CaptureConfig struct {
	// SampleRate in Hz. The recognition engine expects 16000.
	SampleRate uint32

	// Channels of capture audio. Recognition wants mono.
	Channels uint32

	// BitDepth per sample.
	BitDepth uint32

	// BufferFrames per device period. Smaller means lower latency and
	// more CPU.
	BufferFrames uint32

	// SampleBufferSize is the sample channel depth. Larger tolerates a
	// recognizer that falls behind without dropping frames.
	SampleBufferSize int

	// DeviceID selects a capture device; empty uses the default.
	DeviceID string
}

// DefaultConfig returns capture settings tuned for conversational
// recognition with the small Vosk models.
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:       16000,
		Channels:         1,
		BitDepth:         16,
		BufferFrames:     480, // 30ms at 16kHz
		SampleBufferSize: 50,  // ~1.5 seconds of headroom
	}
}

// DeepBufferConfig returns settings for the large, slower models,
// which need more headroom between capture and recognition.
func DeepBufferConfig() CaptureConfig {
	cfg := DefaultConfig()
	cfg.SampleBufferSize = 300 // ~9 seconds of headroom
	return cfg
}

// AudioSample is one chunk of captured audio.
type AudioSample struct {
	Data      []byte
	Timestamp time.Time
	Frames    uint32
}

// Capturer delivers microphone audio over channels.
type Capturer interface {
	// Start opens the device and begins capture. Capture stops when
	// ctx is cancelled.
	Start(ctx context.Context) error

	// Stop halts capture and closes the channels.
	Stop() error

	// Samples returns the captured audio stream.
	Samples() <-chan AudioSample

	// Errors returns capture errors (overflows, device failures).
	Errors() <-chan error

	// IsRunning reports whether capture is active.
	IsRunning() bool
}

// NewCapturer creates the platform capturer.
func NewCapturer(config CaptureConfig) (Capturer, error) {
	return NewMalgoCapturer(config)
}
