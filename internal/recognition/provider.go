package recognition

// Transcript is a single recognition result delivered by a provider.
type Transcript struct {
	// Text is the recognized text.
	Text string

	// Interim indicates provisional text that may still change. Final
	// transcripts have Interim set to false.
	Interim bool

	// Confidence is the recognition confidence (0.0 to 1.0). Zero for
	// interim transcripts.
	Confidence float64
}

// EventSink receives session events from a Provider. Providers must
// deliver events from a single goroutine: SessionStarted once per
// successful start, any number of SessionResult/SessionError calls, and
// SessionEnded exactly once when the session stops for any reason.
type EventSink interface {
	SessionStarted()
	SessionResult(t Transcript)
	SessionError(code string, err error)
	SessionEnded()
}

// Provider is a source of speech-recognition sessions. Implementations
// wrap a concrete recognition pipeline (microphone capture plus a local
// STT engine, or a scripted fake in tests).
type Provider interface {
	// Bind attaches the event sink. Must be called before Start.
	Bind(sink EventSink)

	// Start begins a recognition session. Returns an error if the
	// session cannot be opened (device busy, permission denied).
	Start() error

	// Stop requests the current session end. The provider still emits
	// SessionEnded once teardown completes.
	Stop() error

	// Close releases provider resources.
	Close() error
}
