package tts

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Raw output format of the piper medium voices.
const (
	piperSampleRate = 22050
	piperChannels   = 1
	piperChunkSize  = 4096
)

// PiperEngine synthesizes speech by running the piper binary as a
// subprocess and streaming its raw PCM output.
type PiperEngine struct {
	mu          sync.Mutex
	config      Config
	binary      string
	initialized bool
	voices      []Voice
}

// NewPiperEngine creates a Piper TTS engine. The piper binary must be
// on PATH.
func NewPiperEngine() *PiperEngine {
	return &PiperEngine{
		voices: []Voice{
			{ID: "en_US-lessac-medium", Name: "Lessac", Language: "en-US", Gender: "female"},
			{ID: "en_US-ryan-medium", Name: "Ryan", Language: "en-US", Gender: "male"},
			{ID: "en_GB-alba-medium", Name: "Alba", Language: "en-GB", Gender: "female"},
		},
	}
}

// Initialize locates the piper binary and records the voice model
// directory.
func (p *PiperEngine) Initialize(config Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return fmt.Errorf("engine already initialized")
	}

	binary, err := exec.LookPath("piper")
	if err != nil {
		return fmt.Errorf("piper binary not found on PATH: %w", err)
	}

	p.binary = binary
	p.config = config
	p.initialized = true
	return nil
}

// Synthesize runs piper over the request text and streams raw PCM
// chunks through the callback until synthesis completes or the context
// is cancelled.
func (p *PiperEngine) Synthesize(ctx context.Context, req SynthesizeRequest, callback AudioCallback) error {
	p.mu.Lock()
	if !p.initialized {
		p.mu.Unlock()
		return fmt.Errorf("engine not initialized")
	}
	binary := p.binary
	modelPath := p.voiceModelPath(req.Voice)
	p.mu.Unlock()

	args := []string{"--model", modelPath, "--output-raw"}
	if req.Rate > 0 && req.Rate != 1.0 {
		// Piper scales duration, the inverse of rate
		args = append(args, "--length-scale", fmt.Sprintf("%.2f", 1.0/req.Rate))
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(req.Text)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open piper stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start piper: %w", err)
	}

	streamErr := p.stream(ctx, stdout, req.Volume, callback)
	waitErr := cmd.Wait()

	if streamErr != nil {
		return streamErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("piper failed: %w", waitErr)
	}
	return nil
}

func (p *PiperEngine) stream(ctx context.Context, r io.Reader, volume float32, callback AudioCallback) error {
	buf := make([]byte, piperChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if volume > 0 && volume < 1.0 {
				scaleSamples(chunk, volume)
			}
			if cbErr := callback(AudioChunk{
				Data:       chunk,
				SampleRate: piperSampleRate,
				Channels:   piperChannels,
			}); cbErr != nil {
				return cbErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read piper output: %w", err)
		}
	}
}

// voiceModelPath resolves a voice ID to its onnx model file. A path
// ending in .onnx is used as-is.
func (p *PiperEngine) voiceModelPath(voice string) string {
	if voice == "" {
		voice = p.config.DefaultVoice
	}
	if voice == "" || voice == "default" {
		voice = p.voices[0].ID
	}
	if strings.HasSuffix(voice, ".onnx") {
		return voice
	}
	if p.config.ModelPath != "" {
		return filepath.Join(p.config.ModelPath, voice+".onnx")
	}
	return voice + ".onnx"
}

// scaleSamples attenuates 16-bit little-endian samples in place.
func scaleSamples(data []byte, volume float32) {
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(data[i]) | int16(data[i+1])<<8
		scaled := int16(float32(sample) * volume)
		data[i] = byte(scaled)
		data[i+1] = byte(scaled >> 8)
	}
}

// ListVoices returns the known voice catalog.
func (p *PiperEngine) ListVoices() []Voice {
	return p.voices
}

// Close releases resources.
func (p *PiperEngine) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = false
	return nil
}

// IsInitialized reports whether Initialize has succeeded.
func (p *PiperEngine) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}
