package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// pcmFrame builds a 16-bit little-endian frame where every sample has
// the given amplitude.
func pcmFrame(amplitude int16, samples int) []byte {
	frame := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(amplitude))
	}
	return frame
}

func TestEnergySilentAndLoudFrames(t *testing.T) {
	v := NewVAD(DefaultVADConfig())

	require.Zero(t, v.Energy(nil))
	require.Zero(t, v.Energy(pcmFrame(0, 480)))

	// Full-scale square wave has RMS close to 1.0
	require.InDelta(t, 1.0, v.Energy(pcmFrame(32767, 480)), 0.001)

	quiet := v.Energy(pcmFrame(100, 480))
	loud := v.Energy(pcmFrame(10000, 480))
	require.Less(t, quiet, loud)
}

func TestSpeechStartRequiresConsecutiveFrames(t *testing.T) {
	v := NewVAD(VADConfig{EnergyThreshold: 0.01, SilenceFrames: 5, SpeechFrames: 3})

	loud := pcmFrame(10000, 480)
	silent := pcmFrame(0, 480)

	// Two loud frames then a silent one resets the streak
	for i := 0; i < 2; i++ {
		active, started, _ := v.ProcessFrame(loud)
		require.False(t, active)
		require.False(t, started)
	}
	_, started, _ := v.ProcessFrame(silent)
	require.False(t, started)

	// Three consecutive loud frames trigger on the third
	v.ProcessFrame(loud)
	v.ProcessFrame(loud)
	active, started, _ := v.ProcessFrame(loud)
	require.True(t, active)
	require.True(t, started)
	require.True(t, v.IsSpeaking())

	// Once started, further loud frames do not re-report the start
	_, started, _ = v.ProcessFrame(loud)
	require.False(t, started)
}

func TestSpeechEndsAfterSilenceRun(t *testing.T) {
	v := NewVAD(VADConfig{EnergyThreshold: 0.01, SilenceFrames: 4, SpeechFrames: 1})

	loud := pcmFrame(10000, 480)
	silent := pcmFrame(0, 480)

	_, started, _ := v.ProcessFrame(loud)
	require.True(t, started)

	// Silence shorter than the run keeps the utterance open
	for i := 0; i < 3; i++ {
		active, _, ended := v.ProcessFrame(silent)
		require.True(t, active)
		require.False(t, ended)
	}

	// A loud frame resets the silence counter
	v.ProcessFrame(loud)

	var ended bool
	for i := 0; i < 4; i++ {
		_, _, ended = v.ProcessFrame(silent)
	}
	require.True(t, ended)
	require.False(t, v.IsSpeaking())
}

func TestVADReset(t *testing.T) {
	v := NewVAD(VADConfig{EnergyThreshold: 0.01, SilenceFrames: 4, SpeechFrames: 1})

	v.ProcessFrame(pcmFrame(10000, 480))
	require.True(t, v.IsSpeaking())

	v.Reset()
	require.False(t, v.IsSpeaking())
}
