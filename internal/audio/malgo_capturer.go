package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// MalgoCapturer captures microphone audio through malgo and delivers
// it on a buffered channel.
type MalgoCapturer struct {
	config   CaptureConfig
	device   *malgo.Device
	malgoCtx *malgo.AllocatedContext
	samples  chan AudioSample
	errors   chan error
	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMalgoCapturer creates a capturer for the given configuration.
func NewMalgoCapturer(config CaptureConfig) (*MalgoCapturer, error) {
	bufSize := config.SampleBufferSize
	if bufSize <= 0 {
		bufSize = DefaultConfig().SampleBufferSize
	}
	return &MalgoCapturer{
		config:   config,
		samples:  make(chan AudioSample, bufSize),
		errors:   make(chan error, 10),
		stopChan: make(chan struct{}),
	}, nil
}

// Start opens the capture device and begins delivering samples. The
// capturer stops when ctx is cancelled or Stop is called.
func (m *MalgoCapturer) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("capturer is already running")
	}
	m.running = true
	m.mu.Unlock()

	if err := m.openDevice(); err != nil {
		m.setStopped()
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.stopChan:
		}
	}()

	return nil
}

func (m *MalgoCapturer) openDevice() error {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoCtx = malgoCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = m.config.Channels
	deviceConfig.SampleRate = m.config.SampleRate
	deviceConfig.PeriodSizeInFrames = m.config.BufferFrames

	if m.config.DeviceID != "" {
		if err := m.bindDevice(&deviceConfig); err != nil {
			m.teardownContext()
			return err
		}
	}

	callbacks := malgo.DeviceCallbacks{Data: m.onData}
	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		m.teardownContext()
		return fmt.Errorf("failed to initialize device: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		m.teardownContext()
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

// bindDevice resolves a "capture-N" device ID from enumeration and
// points the device config at it.
func (m *MalgoCapturer) bindDevice(deviceConfig *malgo.DeviceConfig) error {
	idx := -1
	if _, err := fmt.Sscanf(m.config.DeviceID, "capture-%d", &idx); err != nil {
		return fmt.Errorf("invalid device id %q: %w", m.config.DeviceID, err)
	}

	infos, err := m.malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if idx < 0 || idx >= len(infos) {
		return fmt.Errorf("device %s not found", m.config.DeviceID)
	}
	deviceConfig.Capture.DeviceID = infos[idx].ID.Pointer()
	return nil
}

func (m *MalgoCapturer) onData(pOutputSample, pInputSamples []byte, framecount uint32) {
	// The callback buffer is reused; copy before handing it off
	data := make([]byte, len(pInputSamples))
	copy(data, pInputSamples)

	sample := AudioSample{
		Data:      data,
		Timestamp: time.Now(),
		Frames:    framecount,
	}

	// Non-blocking send; recognition that falls behind drops frames
	select {
	case m.samples <- sample:
	default:
		select {
		case m.errors <- fmt.Errorf("sample buffer overflow, dropping frames"):
		default:
		}
	}
}

// Stop halts capture, releases the device, and closes the channels.
func (m *MalgoCapturer) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)

	var stopErr error
	if m.device != nil {
		if err := m.device.Stop(); err != nil && !strings.Contains(err.Error(), "device not started") {
			stopErr = fmt.Errorf("failed to stop device: %w", err)
		}
		m.device.Uninit()
	}
	m.teardownContext()

	m.wg.Wait()
	close(m.samples)
	close(m.errors)
	return stopErr
}

func (m *MalgoCapturer) teardownContext() {
	if m.malgoCtx != nil {
		m.malgoCtx.Uninit()
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
}

// Samples returns the captured audio channel. It closes on Stop.
func (m *MalgoCapturer) Samples() <-chan AudioSample {
	return m.samples
}

// Errors returns the capture error channel.
func (m *MalgoCapturer) Errors() <-chan error {
	return m.errors
}

// IsRunning reports whether the device is capturing.
func (m *MalgoCapturer) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *MalgoCapturer) setStopped() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}
