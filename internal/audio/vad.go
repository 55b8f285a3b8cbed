package audio

import (
	"math"
)

// VADConfig tunes voice activity detection.
type VADConfig struct {
	// EnergyThreshold is the RMS level above which a frame counts as
	// speech. Lower is more sensitive; 0.001 to 0.1 is the useful
	// range for typical microphones.
	EnergyThreshold float64

	// SilenceFrames is how many consecutive quiet frames close the
	// current utterance. At 30ms frames, 33 is roughly one second.
	SilenceFrames int

	// SpeechFrames is how many consecutive speech frames must arrive
	// before speech start triggers, filtering out clicks and pops.
	SpeechFrames int
}

// DefaultVADConfig returns thresholds tuned for conversational turns.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		EnergyThreshold: 0.01,
		SilenceFrames:   33,
		SpeechFrames:    3,
	}
}

// VAD detects speech versus silence in the capture stream. It drives
// two things in the conversation loop: finalizing an utterance at a
// silence boundary, and flagging user speech so assistant output can
// be interrupted.
type VAD struct {
	config       VADConfig
	quietStreak  int
	speechStreak int
	isSpeaking   bool
}

// NewVAD creates a detector with the given thresholds.
func NewVAD(config VADConfig) *VAD {
	return &VAD{config: config}
}

// ProcessFrame classifies one frame of 16-bit little-endian PCM and
// returns (speechActive, speechStarted, speechEnded). The started and
// ended flags fire once per transition.
func (v *VAD) ProcessFrame(frame []byte) (bool, bool, bool) {
	if calculateEnergy(frame) > v.config.EnergyThreshold {
		started := v.onSpeechFrame()
		return v.isSpeaking, started, false
	}
	ended := v.onQuietFrame()
	return v.isSpeaking, false, ended
}

func (v *VAD) onSpeechFrame() bool {
	v.speechStreak++
	v.quietStreak = 0
	if !v.isSpeaking && v.speechStreak >= v.config.SpeechFrames {
		v.isSpeaking = true
		return true
	}
	return false
}

func (v *VAD) onQuietFrame() bool {
	v.quietStreak++
	v.speechStreak = 0
	if v.isSpeaking && v.quietStreak >= v.config.SilenceFrames {
		v.isSpeaking = false
		return true
	}
	return false
}

// IsSpeaking reports whether an utterance is currently open.
func (v *VAD) IsSpeaking() bool {
	return v.isSpeaking
}

// Reset clears all detection state.
func (v *VAD) Reset() {
	v.quietStreak = 0
	v.speechStreak = 0
	v.isSpeaking = false
}

// Energy returns the RMS energy of a frame, exposed for threshold
// calibration.
func (v *VAD) Energy(frame []byte) float64 {
	return calculateEnergy(frame)
}

func calculateEnergy(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < samples; i++ {
		s := int16(frame[i*2]) | int16(frame[i*2+1])<<8
		n := float64(s) / 32768.0
		sum += n * n
	}
	return math.Sqrt(sum / float64(samples))
}
