package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// PlaybackConfig holds configuration for audio playback
type PlaybackConfig struct {
	// SampleRate is the number of samples per second (Hz)
	SampleRate uint32

	// Channels is the number of audio channels (1 = mono)
	Channels uint32

	// BufferFrames is the number of frames per device period
	BufferFrames uint32

	// QueueSeconds is how much synthesized audio the player queues ahead
	QueueSeconds int
}

// DefaultPlaybackConfig returns playback settings matching the synthesis
// output of the bundled TTS voices
func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		SampleRate:   22050,
		Channels:     1,
		BufferFrames: 512,
		QueueSeconds: 10,
	}
}

// Player streams 16-bit PCM audio to the default output device. Writes
// queue through a ring buffer that the malgo playback callback drains;
// the device plays silence whenever the queue runs dry.
type Player struct {
	config       PlaybackConfig
	buffer       *RingBuffer
	mu           sync.Mutex
	malgoContext *malgo.AllocatedContext
	device       *malgo.Device
	running      bool
}

// NewPlayer creates a new playback device wrapper
func NewPlayer(config PlaybackConfig) *Player {
	if config.QueueSeconds <= 0 {
		config.QueueSeconds = DefaultPlaybackConfig().QueueSeconds
	}
	queueBytes := int(config.SampleRate) * int(config.Channels) * 2 * config.QueueSeconds
	return &Player{
		config: config,
		buffer: NewRingBuffer(queueBytes),
	}
}

// Start opens the playback device
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("player is already running")
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = p.config.Channels
	deviceConfig.SampleRate = p.config.SampleRate
	deviceConfig.PeriodSizeInFrames = p.config.BufferFrames

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSample, pInputSamples []byte, framecount uint32) {
		n := p.buffer.Read(pOutputSample)
		// Pad with silence when the queue runs dry
		for i := n; i < len(pOutputSample); i++ {
			pOutputSample[i] = 0
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		malgoCtx.Free()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	p.malgoContext = malgoCtx
	p.device = device
	p.running = true
	return nil
}

// Write queues PCM data for playback, blocking while the queue is full
func (p *Player) Write(data []byte) error {
	for len(data) > 0 {
		if !p.IsRunning() {
			return fmt.Errorf("player is not running")
		}
		n, err := p.buffer.Write(data)
		if err != nil || n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		data = data[n:]
	}
	return nil
}

// Drain blocks until the queued audio has been played out or the context
// is cancelled
func (p *Player) Drain(ctx context.Context) error {
	for p.buffer.Available() > 0 {
		if !p.IsRunning() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
	return nil
}

// Clear discards any queued audio immediately
func (p *Player) Clear() {
	p.buffer.Reset()
}

// Stop closes the playback device and discards queued audio
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	if p.device != nil {
		if err := p.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop playback device: %w", err)
		}
		p.device.Uninit()
		p.device = nil
	}

	if p.malgoContext != nil {
		p.malgoContext.Uninit()
		p.malgoContext.Free()
		p.malgoContext = nil
	}

	p.buffer.Reset()
	return nil
}

// IsRunning returns true if the playback device is open
func (p *Player) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
