package recognition

import (
	"sync"
	"time"
)

// Config holds tuning for the capture controller.
type Config struct {
	// MaxRetries bounds automatic recovery from transient errors.
	MaxRetries int

	// BackoffBase is the first retry delay; it doubles on each attempt.
	BackoffBase time.Duration

	// BackoffCap is the upper bound on the retry delay.
	BackoffCap time.Duration

	// StartDelay is applied before opening a session, to avoid racing a
	// provider session that has only just stopped.
	StartDelay time.Duration

	// SettleDelay is applied before auto-restarting after a session ends,
	// to avoid rapid start/stop cycling.
	SettleDelay time.Duration
}

// DefaultConfig returns the default controller tuning.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BackoffBase: 1 * time.Second,
		BackoffCap:  10 * time.Second,
		StartDelay:  200 * time.Millisecond,
		SettleDelay: 1500 * time.Millisecond,
	}
}

// Listeners receive controller notifications. Nil functions are skipped.
// Callbacks are invoked outside the controller lock; calling back into
// the controller from them is safe.
type Listeners struct {
	// OnState fires on every state transition.
	OnState func(State)

	// OnInterim fires when provisional text updates. An empty string
	// means the interim transcript was cleared.
	OnInterim func(text string)

	// OnFinal fires once per finalized transcript.
	OnFinal func(text string, confidence float64)

	// OnError fires when a session error is surfaced.
	OnError func(err *SessionError)
}

// stopper is a cancelable scheduled callback.
type stopper interface {
	Stop() bool
}

type scheduleFunc func(d time.Duration, fn func()) stopper

func afterFunc(d time.Duration, fn func()) stopper {
	return time.AfterFunc(d, fn)
}

// Controller wraps a recognition Provider with defensive sequencing:
// it guarantees no overlapping start attempts, classifies session errors,
// retries transient ones with bounded backoff, and auto-restarts after a
// clean session end when auto-listen is enabled. All pending timers are
// owned by the controller and cancelled deterministically on state exit,
// so a stale callback never fires into a newer session.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	provider  Provider
	listeners Listeners
	schedule  scheduleFunc

	state      State
	autoListen bool
	paused     bool
	retries    int
	lastErr    *SessionError
	interim    string

	// retryPending defers the backoff restart until the failed session
	// has fully ended, so a retry never starts against a live session.
	retryPending bool
	retryDelay   time.Duration

	startTimer  stopper
	settleTimer stopper
	retryTimer  stopper
}

// NewController creates a controller around the given provider and binds
// itself as the provider's event sink.
func NewController(provider Provider, cfg Config) *Controller {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultConfig().BackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = DefaultConfig().BackoffCap
	}
	c := &Controller{
		cfg:        cfg,
		provider:   provider,
		schedule:   afterFunc,
		state:      StateIdle,
		autoListen: true,
	}
	provider.Bind(c)
	return c
}

// SetListeners replaces the notification callbacks. Call before
// StartListening.
func (c *Controller) SetListeners(l Listeners) {
	c.mu.Lock()
	c.listeners = l
	c.mu.Unlock()
}

// StartListening begins a capture session. It is a no-op unless the
// controller is idle, which guarantees a single in-flight start attempt.
func (c *Controller) StartListening() {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.beginLocked()
	c.mu.Unlock()
	c.notifyState(StateStarting)
}

// beginLocked transitions to starting and schedules the provider start.
func (c *Controller) beginLocked() {
	c.cancelTimersLocked()
	c.interim = ""
	c.lastErr = nil
	c.state = StateStarting
	c.startTimer = c.schedule(c.cfg.StartDelay, c.openSession)
}

// openSession issues the underlying provider start. Runs from the start
// timer so a just-stopped session has time to tear down first.
func (c *Controller) openSession() {
	c.mu.Lock()
	if c.state != StateStarting {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.provider.Start(); err != nil {
		// The session never opened, so no SessionEnded will follow.
		// Surface the failure as a device error and return to idle.
		sessErr := newSessionError(CodeAudioCapture, err)
		c.mu.Lock()
		c.lastErr = sessErr
		c.autoListen = false
		c.state = StateIdle
		c.mu.Unlock()
		c.notifyState(StateIdle)
		c.notifyError(sessErr)
	}
}

// StopListening requests the session end. It only acts while a session
// is active or starting, and cancels any pending restart.
func (c *Controller) StopListening() {
	c.mu.Lock()
	if c.state != StateActive && c.state != StateStarting {
		c.mu.Unlock()
		return
	}
	starting := c.state == StateStarting
	c.cancelTimersLocked()
	c.state = StateStopping
	c.mu.Unlock()
	c.notifyState(StateStopping)

	if starting {
		// The provider start was still pending; no session exists, so
		// no SessionEnded will arrive. Settle back to idle directly.
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.notifyState(StateIdle)
		return
	}
	_ = c.provider.Stop()
}

/// Pause soft-pauses capture while speech output plays: finalized
// transcripts are dropped and auto-restart is held, but interim results
// keep flowing so user interruption of the output can still be detected.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume lifts a Pause and restarts listening if auto-listen is enabled
// and the controller is idle with no surfaced error.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	restart := c.autoListen && c.state == StateIdle && c.lastErr == nil
	c.mu.Unlock()
	if restart {
		c.StartListening()
	}
}

// Reset clears the error and retry state and forces the controller back
// to idle. Like a successful session start, it replenishes the retry
// budget.
func (c *Controller) Reset() {
	c.mu.Lock()
	active := c.state == StateActive
	c.cancelTimersLocked()
	c.retries = 0
	c.retryPending = false
	c.lastErr = nil
	c.interim = ""
	c.paused = false
	c.state = StateIdle
	c.mu.Unlock()
	if active {
		_ = c.provider.Stop()
	}
	c.notifyState(StateIdle)
}

// SetAutoListen toggles automatic restart after each session end.
func (c *Controller) SetAutoListen(on bool) {
	c.mu.Lock()
	c.autoListen = on
	c.mu.Unlock()
}

// AutoListen reports whether automatic restart is enabled.
func (c *Controller) AutoListen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoListen
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Interim returns the current provisional transcript, if any.
func (c *Controller) Interim() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interim
}

// LastError returns the most recent surfaced session error.
func (c *Controller) LastError() *SessionError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SessionStarted implements EventSink.
func (c *Controller) SessionStarted() {
	c.mu.Lock()
	c.state = StateActive
	c.lastErr = nil
	c.retries = 0
	c.mu.Unlock()
	c.notifyState(StateActive)
}

// SessionResult implements EventSink.
func (c *Controller) SessionResult(t Transcript) {
	c.mu.Lock()
	if t.Interim {
		c.interim = t.Text
		c.mu.Unlock()
		if c.listeners.OnInterim != nil && t.Text != "" {
			c.listeners.OnInterim(t.Text)
		}
		return
	}
	c.interim = ""
	dropped := c.paused
	c.mu.Unlock()
	if c.listeners.OnInterim != nil {
		c.listeners.OnInterim("")
	}
	if dropped {
		// Output is playing; the finalized text is stale echo.
		return
	}
	if c.listeners.OnFinal != nil && t.Text != "" {
		c.listeners.OnFinal(t.Text, t.Confidence)
	}
}

// SessionError implements EventSink.
func (c *Controller) SessionError(code string, err error) {
	sessErr := newSessionError(code, err)

	c.mu.Lock()
	c.lastErr = sessErr
	c.state = StateError
	switch sessErr.Class {
	case ClassRetryable:
		if c.retries < c.cfg.MaxRetries {
			// The failing session may still be live; hold the restart
			// until SessionEnded confirms it is gone.
			c.retryDelay = backoffDelay(c.cfg, c.retries)
			c.retries++
			c.retryPending = true
		}
		// Budget exhausted: surface the error and wait for Reset.
	case ClassFatal, ClassUnknown:
		c.autoListen = false
	}
	c.mu.Unlock()

	c.notifyState(StateError)
	c.notifyError(sessErr)
}

// SessionEnded implements EventSink.
func (c *Controller) SessionEnded() {
	c.mu.Lock()
	c.interim = ""
	hadErr := c.lastErr != nil
	stopped := c.state == StateStopping
	c.state = StateIdle
	switch {
	case stopped:
		// An explicit stop wins over any pending retry.
		c.retryPending = false
	case c.retryPending:
		c.retryPending = false
		c.cancelTimerLocked(&c.retryTimer)
		c.retryTimer = c.schedule(c.retryDelay, c.retryStart)
	case c.autoListen && !hadErr && !c.paused && c.retries < c.cfg.MaxRetries:
		c.cancelTimerLocked(&c.settleTimer)
		c.settleTimer = c.schedule(c.cfg.SettleDelay, c.StartListening)
	}
	c.mu.Unlock()
	c.notifyState(StateIdle)
}

// retryStart re-enters the starting state after a backoff delay.
func (c *Controller) retryStart() {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateError {
		c.mu.Unlock()
		return
	}
	c.beginLocked()
	c.mu.Unlock()
	c.notifyState(StateStarting)
}

func (c *Controller) cancelTimersLocked() {
	c.cancelTimerLocked(&c.startTimer)
	c.cancelTimerLocked(&c.settleTimer)
	c.cancelTimerLocked(&c.retryTimer)
}

func (c *Controller) cancelTimerLocked(t *stopper) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (c *Controller) notifyState(s State) {
	if c.listeners.OnState != nil {
		c.listeners.OnState(s)
	}
}

func (c *Controller) notifyError(err *SessionError) {
	if c.listeners.OnError != nil {
		c.listeners.OnError(err)
	}
}

// backoffDelay computes the retry delay for the given attempt number,
// doubling from the base and clamped at the cap.
func backoffDelay(cfg Config, attempt int) time.Duration {
	d := cfg.BackoffBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cfg.BackoffCap {
			return cfg.BackoffCap
		}
	}
	if d > cfg.BackoffCap {
		return cfg.BackoffCap
	}
	return d
}
