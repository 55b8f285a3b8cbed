package recognition

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

// fakeClock collects scheduled callbacks so tests fire them explicitly.
type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) schedule(d time.Duration, fn func()) stopper {
	t := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// pending returns timers that are neither fired nor cancelled.
func (c *fakeClock) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireNext fires the oldest pending timer.
func (c *fakeClock) fireNext(t *testing.T) {
	t.Helper()
	pending := c.pending()
	require.NotEmpty(t, pending, "no pending timer to fire")
	timer := pending[0]
	timer.fired = true
	timer.fn()
}

type fakeProvider struct {
	sink     EventSink
	starts   int
	stops    int
	startErr error
}

func (p *fakeProvider) Bind(sink EventSink) { p.sink = sink }

func (p *fakeProvider) Start() error {
	p.starts++
	return p.startErr
}

func (p *fakeProvider) Stop() error {
	p.stops++
	return nil
}

func (p *fakeProvider) Close() error { return nil }

func newTestController() (*Controller, *fakeProvider, *fakeClock) {
	provider := &fakeProvider{}
	clock := &fakeClock{}
	ctrl := NewController(provider, DefaultConfig())
	ctrl.schedule = clock.schedule
	return ctrl, provider, clock
}

func TestStartListeningDelaysProviderStart(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()

	require.Equal(t, StateStarting, ctrl.State())
	require.Equal(t, 0, provider.starts, "provider must not start before the delay elapses")

	pending := clock.pending()
	require.Len(t, pending, 1)
	require.Equal(t, 200*time.Millisecond, pending[0].delay)

	clock.fireNext(t)
	require.Equal(t, 1, provider.starts)
}

func TestStartListeningWhileStartingIsNoOp(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	ctrl.StartListening()
	ctrl.StartListening()

	require.Len(t, clock.pending(), 1, "repeated starts must not stack timers")
	clock.fireNext(t)
	require.Equal(t, 1, provider.starts)
}

func TestProviderStartFailureSurfacesDeviceError(t *testing.T) {
	ctrl, provider, clock := newTestController()
	provider.startErr = errors.New("device busy")

	var gotErr *SessionError
	ctrl.SetListeners(Listeners{
		OnError: func(err *SessionError) { gotErr = err },
	})

	ctrl.StartListening()
	clock.fireNext(t)

	require.Equal(t, StateIdle, ctrl.State())
	require.NotNil(t, gotErr)
	require.Equal(t, CodeAudioCapture, gotErr.Code)
	require.Equal(t, ClassFatal, gotErr.Class)
	require.False(t, ctrl.AutoListen(), "a failed device start must disable auto-listen")
}

func TestSessionLifecycleDeliversResults(t *testing.T) {
	ctrl, provider, clock := newTestController()

	var states []State
	var interims []string
	var finalText string
	var finalConf float64
	ctrl.SetListeners(Listeners{
		OnState:   func(s State) { states = append(states, s) },
		OnInterim: func(text string) { interims = append(interims, text) },
		OnFinal: func(text string, confidence float64) {
			finalText = text
			finalConf = confidence
		},
	})

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()
	require.Equal(t, StateActive, ctrl.State())

	provider.sink.SessionResult(Transcript{Text: "what is a", Interim: true})
	provider.sink.SessionResult(Transcript{Text: "what is a contract", Interim: true})
	require.Equal(t, "what is a contract", ctrl.Interim())

	provider.sink.SessionResult(Transcript{Text: "what is a contract", Confidence: 0.92})
	require.Equal(t, "what is a contract", finalText)
	require.InDelta(t, 0.92, finalConf, 1e-9)
	require.Empty(t, ctrl.Interim(), "finalizing must clear the interim transcript")

	require.Equal(t, []string{"what is a", "what is a contract", ""}, interims)
	require.Equal(t, []State{StateStarting, StateActive}, states)
}

func TestPausedDropsFinalsButKeepsInterims(t *testing.T) {
	ctrl, provider, clock := newTestController()

	var interims []string
	finals := 0
	ctrl.SetListeners(Listeners{
		OnInterim: func(text string) {
			if text != "" {
				interims = append(interims, text)
			}
		},
		OnFinal: func(string, float64) { finals++ },
	})

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	ctrl.Pause()
	provider.sink.SessionResult(Transcript{Text: "stop reading", Interim: true})
	provider.sink.SessionResult(Transcript{Text: "stop reading that", Confidence: 0.8})

	require.Equal(t, []string{"stop reading"}, interims, "interims must flow while paused")
	require.Zero(t, finals, "finals arriving while paused are stale echo")
}

func TestRetryableErrorBackoffSchedule(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	wantDelays := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second, // capped
	}

	for _, want := range wantDelays {
		provider.sink.SessionError(CodeNetwork, errors.New("transient"))
		require.Empty(t, clock.pending(), "retry must wait for the session to end")

		provider.sink.SessionEnded()
		pending := clock.pending()
		require.Len(t, pending, 1)
		require.Equal(t, want, pending[0].delay)

		clock.fireNext(t) // retry timer re-enters starting
		require.Equal(t, StateStarting, ctrl.State())
		clock.fireNext(t) // start delay opens the session
	}
	require.Equal(t, 6, provider.starts)

	// Budget exhausted: the sixth consecutive error schedules nothing.
	provider.sink.SessionError(CodeNetwork, errors.New("transient"))
	require.Equal(t, StateError, ctrl.State())
	provider.sink.SessionEnded()
	require.Empty(t, clock.pending())
}

func TestMidSessionErrorHoldsRetryUntilSessionEnds(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	// The engine fails while the provider's session is still live.
	// Restarting now would collide with the open capture device.
	provider.sink.SessionError(CodeAborted, errors.New("engine wedged"))

	require.Empty(t, clock.pending(), "no restart while the session is live")
	require.Equal(t, 1, provider.starts)
	require.True(t, ctrl.AutoListen(), "a retryable error must not disable auto-listen")

	provider.sink.SessionEnded()
	pending := clock.pending()
	require.Len(t, pending, 1)
	require.Equal(t, 1*time.Second, pending[0].delay)

	clock.fireNext(t) // retry timer
	clock.fireNext(t) // start delay
	require.Equal(t, 2, provider.starts)
	require.Equal(t, StateStarting, ctrl.State())
	require.True(t, ctrl.AutoListen())
}

func TestSuccessfulStartReplenishesRetryBudget(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	// Burn two retries; the backoff doubles each time.
	for _, want := range []time.Duration{1 * time.Second, 2 * time.Second} {
		provider.sink.SessionError(CodeNetwork, nil)
		provider.sink.SessionEnded()
		pending := clock.pending()
		require.Len(t, pending, 1)
		require.Equal(t, want, pending[0].delay)
		clock.fireNext(t)
		clock.fireNext(t)
	}

	// A session coming up healthy resets the budget, so the next
	// failure starts the backoff over from the base delay.
	provider.sink.SessionStarted()
	provider.sink.SessionError(CodeNetwork, nil)
	provider.sink.SessionEnded()
	pending := clock.pending()
	require.Len(t, pending, 1)
	require.Equal(t, 1*time.Second, pending[0].delay)
}

func TestExhaustedBudgetWaitsForReset(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)

	// Burn the whole budget without a single healthy session.
	for i := 0; i < 5; i++ {
		provider.sink.SessionError(CodeNetwork, nil)
		provider.sink.SessionEnded()
		clock.fireNext(t)
		clock.fireNext(t)
	}

	provider.sink.SessionError(CodeNetwork, nil)
	provider.sink.SessionEnded()
	require.Empty(t, clock.pending(), "exhausted budget must not schedule a retry")

	// Reset replenishes the budget; retries resume on the next failure.
	ctrl.Reset()
	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionError(CodeNetwork, nil)
	provider.sink.SessionEnded()
	require.Len(t, clock.pending(), 1)
}

func TestFatalErrorDisablesAutoListen(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	provider.sink.SessionError(CodeNotAllowed, errors.New("permission denied"))

	require.False(t, ctrl.AutoListen())
	require.Empty(t, clock.pending(), "fatal errors must not schedule retries")

	provider.sink.SessionEnded()
	require.Empty(t, clock.pending(), "no auto-restart after a fatal error")
	require.Equal(t, StateIdle, ctrl.State())
}

func TestUnknownErrorDisablesAutoListen(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	provider.sink.SessionError("something-new", nil)

	require.False(t, ctrl.AutoListen())
	require.Empty(t, clock.pending())
	require.Equal(t, ClassUnknown, ctrl.LastError().Class)
}

func TestSessionEndedSchedulesSettledRestart(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	provider.sink.SessionEnded()
	require.Equal(t, StateIdle, ctrl.State())

	pending := clock.pending()
	require.Len(t, pending, 1)
	require.Equal(t, 1500*time.Millisecond, pending[0].delay)

	clock.fireNext(t)
	require.Equal(t, StateStarting, ctrl.State())
}

func TestStopListeningSuppressesRestart(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	ctrl.StopListening()
	require.Equal(t, 1, provider.stops)

	provider.sink.SessionEnded()
	require.Equal(t, StateIdle, ctrl.State())
	require.Empty(t, clock.pending(), "an explicit stop must not auto-restart")
	require.True(t, ctrl.AutoListen(), "stop must not clear the auto-listen preference")
}

func TestStopWhileStartingSettlesToIdle(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	ctrl.StopListening()

	require.Equal(t, StateIdle, ctrl.State())
	require.Empty(t, clock.pending(), "the pending start must be cancelled")
	require.Zero(t, provider.starts)
	require.Zero(t, provider.stops, "no session was open, nothing to stop")
}

func TestPauseResumeRestartsWhenIdle(t *testing.T) {
	ctrl, provider, clock := newTestController()

	ctrl.StartListening()
	clock.fireNext(t)
	provider.sink.SessionStarted()

	ctrl.Pause()
	provider.sink.SessionEnded()
	require.Empty(t, clock.pending(), "no auto-restart while paused")

	ctrl.Resume()
	require.Equal(t, StateStarting, ctrl.State())
	clock.fireNext(t)
	require.Equal(t, 2, provider.starts)
}

func TestBackoffDelayTable(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{10, 10 * time.Second},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, backoffDelay(cfg, tc.attempt), "attempt %d", tc.attempt)
	}
}
