package recognition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want ErrorClass
	}{
		{CodeNotAllowed, ClassFatal},
		{CodeServiceNotAllowed, ClassFatal},
		{CodeAudioCapture, ClassFatal},
		{CodeAborted, ClassRetryable},
		{CodeNetwork, ClassRetryable},
		{CodeNoSpeech, ClassRetryable},
		{"language-not-supported", ClassUnknown},
		{"", ClassUnknown},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.code), "code %q", tc.code)
	}
}

func TestSessionErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := newSessionError(CodeNetwork, cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, ClassRetryable, err.Class)
	require.Contains(t, err.Error(), "network")
	require.Contains(t, err.Error(), "retryable")
	require.Contains(t, err.Error(), "socket closed")
}

func TestSessionErrorWithoutCause(t *testing.T) {
	err := newSessionError(CodeNoSpeech, nil)

	require.NoError(t, err.Unwrap())
	require.Equal(t, "recognition: no-speech (retryable)", err.Error())
}
