package recognition

import "fmt"

// Provider error codes. These mirror the codes recognition providers
// report for failed or aborted sessions.
const (
	CodeNotAllowed        = "not-allowed"
	CodeServiceNotAllowed = "service-not-allowed"
	CodeAudioCapture      = "audio-capture"
	CodeAborted           = "aborted"
	CodeNetwork           = "network"
	CodeNoSpeech          = "no-speech"
)

// ErrorClass determines how the controller recovers from a session error.
type ErrorClass int

const (
	// ClassFatal errors (permission or device denied) halt automatic
	// recovery; the user must restart listening manually.
	ClassFatal ErrorClass = iota

	// ClassRetryable errors are transient and retried with bounded
	// exponential backoff.
	ClassRetryable

	// ClassUnknown errors are surfaced and disable auto-listen, but a
	// manual restart may still succeed.
	ClassUnknown
)

// String returns the class name.
func (c ErrorClass) String() string {
	switch c {
	case ClassFatal:
		return "fatal"
	case ClassRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

// Classify maps a provider error code to its recovery class.
func Classify(code string) ErrorClass {
	switch code {
	case CodeNotAllowed, CodeServiceNotAllowed, CodeAudioCapture:
		return ClassFatal
	case CodeAborted, CodeNetwork, CodeNoSpeech:
		return ClassRetryable
	default:
		return ClassUnknown
	}
}

// SessionError is a classified recognition session failure.
type SessionError struct {
	Code  string
	Class ErrorClass
	Err   error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("recognition: %s (%s)", e.Code, e.Class)
	}
	return fmt.Sprintf("recognition: %s (%s): %v", e.Code, e.Class, e.Err)
}

// Unwrap returns the underlying cause, if any.
func (e *SessionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newSessionError(code string, err error) *SessionError {
	return &SessionError{Code: code, Class: Classify(code), Err: err}
}
