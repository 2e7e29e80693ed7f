package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type runState int

const (
	stopped runState = iota
	running
	paused
)

// segment is the single tag for mode and phase together, so a Pomodoro
// phase can never coexist with a custom countdown.
type segment int

const (
	segIdle segment = iota
	segCustom
	segStudy
	segShortBreak
	segLongBreak
)

func (s segment) mode() Mode {
	switch s {
	case segCustom:
		return ModeCustom
	case segStudy, segShortBreak, segLongBreak:
		return ModePomodoro
	}
	return ModeIdle
}

func (s segment) phase() Phase {
	switch s {
	case segStudy:
		return PhaseStudy
	case segShortBreak:
		return PhaseShortBreak
	case segLongBreak:
		return PhaseLongBreak
	}
	return PhaseIdle
}

func segmentFor(p Phase) segment {
	switch p {
	case PhaseStudy:
		return segStudy
	case PhaseShortBreak:
		return segShortBreak
	case PhaseLongBreak:
		return segLongBreak
	}
	return segIdle
}

// Engine drives a drift-free countdown and the Pomodoro phase cycle.
// Remaining time is always derived from the clock, never decremented.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	clock    Clock
	sched    Scheduler
	notifier Notifier
	observer Observer
	logger   *slog.Logger

	seg       segment
	run       runState
	initial   time.Duration
	remaining time.Duration
	anchor    time.Time
	cycles    int
	runID     string

	cancel func()
	gen    uint64
}

type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

func WithScheduler(s Scheduler) Option { return func(e *Engine) { e.sched = s } }

func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// New creates an idle engine.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg.withDefaults(),
		clock:    SystemClock,
		sched:    TickerScheduler{},
		notifier: nopNotifier{},
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetConfig replaces the configuration. It takes effect at the next segment start.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg.withDefaults()
	e.mu.Unlock()
}

func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// StartCustom begins a countdown of d. It is a no-op while anything is
// running, and resumes a paused custom countdown instead of restarting it.
func (e *Engine) StartCustom(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	switch {
	case e.run == running:
		return nil
	case e.run == paused && e.seg == segCustom && e.remaining > 0:
		e.resumeLocked(now)
		return nil
	}

	e.runID = uuid.NewString()
	e.beginLocked(segCustom, d, now)
	e.logger.Debug("custom countdown started", "run_id", e.runID, "duration", d)
	return nil
}

// StartPomodoro starts a fresh cycle at Study. No-op when a cycle is already active.
func (e *Engine) StartPomodoro() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seg.mode() == ModePomodoro {
		return
	}
	e.cycles = 0
	e.runID = uuid.NewString()
	e.beginLocked(segStudy, e.cfg.Study, e.clock.Now())
	e.logger.Debug("pomodoro started", "run_id", e.runID)
}

// Pause freezes the countdown at its current remaining time.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.run != running {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	e.remaining = e.remainingAt(now)
	if e.remaining == 0 {
		events := e.completeLocked(now, false)
		e.mu.Unlock()
		e.dispatch(events)
		return
	}
	e.cancelTickLocked()
	e.run = paused
	e.mu.Unlock()
}

// Resume continues a paused countdown from where it stopped.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.run != paused {
		return
	}
	e.resumeLocked(e.clock.Now())
}

// Toggle pauses a running countdown or resumes a paused one.
func (e *Engine) Toggle() {
	e.mu.Lock()
	state := e.run
	e.mu.Unlock()

	switch state {
	case running:
		e.Pause()
	case paused:
		e.Resume()
	}
}

// SkipPhase completes the current Pomodoro phase immediately. It reports
// whether a phase was skipped.
func (e *Engine) SkipPhase() bool {
	e.mu.Lock()
	if e.seg.mode() != ModePomodoro {
		e.mu.Unlock()
		return false
	}
	events := e.completeLocked(e.clock.Now(), true)
	e.mu.Unlock()

	e.dispatch(events)
	return true
}

// Reset stops any countdown and returns to the initial idle state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTickLocked()
	e.seg = segIdle
	e.run = stopped
	e.initial = 0
	e.remaining = 0
	e.anchor = time.Time{}
	e.cycles = 0
	e.runID = ""
}

// Snapshot returns the observable state, with remaining time derived from
// the clock at the moment of the call.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	remaining := e.remaining
	if e.run == running {
		remaining = e.remainingAt(e.clock.Now())
	}
	return State{
		Mode:                  e.seg.mode(),
		Phase:                 e.seg.phase(),
		IsRunning:             e.run == running,
		IsPaused:              e.run == paused,
		TimeRemaining:         remaining,
		Initial:               e.initial,
		CompletedCycles:       e.cycles,
		CyclesBeforeLongBreak: e.cfg.CyclesBeforeLongBreak,
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.run != running {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	e.remaining = e.remainingAt(now)
	if e.remaining > 0 {
		e.mu.Unlock()
		return
	}
	events := e.completeLocked(now, false)
	e.mu.Unlock()

	e.dispatch(events)
}

// anchorFor is the instant that makes remaining come out right when the
// countdown restarts at now.
func anchorFor(now time.Time, initial, remaining time.Duration) time.Time {
	return now.Add(-(initial - remaining))
}

func (e *Engine) remainingAt(now time.Time) time.Duration {
	left := e.initial - now.Sub(e.anchor)
	if left < 0 {
		return 0
	}
	if left > e.initial {
		return e.initial
	}
	return left
}

func (e *Engine) beginLocked(seg segment, d time.Duration, now time.Time) {
	e.seg = seg
	e.initial = d
	e.remaining = d
	e.anchor = now
	e.run = running
	e.scheduleLocked()
}

func (e *Engine) resumeLocked(now time.Time) {
	e.anchor = anchorFor(now, e.initial, e.remaining)
	e.run = running
	e.scheduleLocked()
}

func (e *Engine) scheduleLocked() {
	e.cancelTickLocked()
	gen := e.gen
	e.cancel = e.sched.Every(e.cfg.TickInterval, func() { e.tick(gen) })
}

func (e *Engine) cancelTickLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

type pendingEvent struct {
	title      string
	body       string
	completion Completion
}

// completeLocked is the single phase-complete transition shared by natural
// expiry and SkipPhase.
func (e *Engine) completeLocked(now time.Time, skipped bool) []pendingEvent {
	left := e.remaining
	if e.run == running {
		left = e.remainingAt(now)
	}
	e.cancelTickLocked()
	e.remaining = 0

	done := Completion{
		RunID:   e.runID,
		Mode:    e.seg.mode(),
		Phase:   e.seg.phase(),
		Planned: e.initial,
		Actual:  e.initial - left,
		Skipped: skipped,
		At:      now,
	}

	var title, body string
	switch e.seg {
	case segCustom:
		e.seg = segIdle
		e.run = stopped
		title, body = "Time's Up!", "Your custom timer has finished."

	case segStudy:
		e.cycles++
		next := PhaseShortBreak
		title, body = "Short Break!", "Take a quick rest before the next session."
		if e.cycles%e.cfg.CyclesBeforeLongBreak == 0 {
			next = PhaseLongBreak
			title, body = "Long Break!", "You've earned a longer rest. Recharge!"
		}
		e.beginLocked(segmentFor(next), e.cfg.duration(next), now)

	case segShortBreak, segLongBreak:
		title, body = "Focus Time!", "Time to concentrate on your studies."
		e.beginLocked(segStudy, e.cfg.Study, now)

	default:
		return nil
	}
	done.Cycle = e.cycles

	e.logger.Debug("segment complete",
		"run_id", done.RunID,
		"mode", done.Mode.String(),
		"phase", done.Phase.String(),
		"skipped", skipped,
		"cycles", e.cycles,
		"next", e.seg.phase().String(),
	)
	return []pendingEvent{{title: title, body: body, completion: done}}
}

// dispatch runs outside the lock so sinks may call back into the engine.
func (e *Engine) dispatch(events []pendingEvent) {
	for _, ev := range events {
		e.notifier.Notify(ev.title, ev.body)
		e.observer.PhaseCompleted(ev.completion)
	}
}
