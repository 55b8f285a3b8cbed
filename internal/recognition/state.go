package recognition

// State represents the lifecycle of a speech capture session.
// A controller holds exactly one state at a time; transitions are driven
// by explicit start/stop calls and by provider session events.
type State int

const (
	// StateIdle means no session is running and none is being started.
	StateIdle State = iota

	// StateStarting means a start has been requested but the provider has
	// not yet confirmed the session is live.
	StateStarting

	// StateActive means the provider session is live and delivering results.
	StateActive

	// StateStopping means a stop has been requested but the provider has
	// not yet confirmed the session ended.
	StateStopping

	// StateError means the last session ended with a surfaced error.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
