package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualScheduler only runs callbacks when Fire is called.
type manualScheduler struct {
	mu     sync.Mutex
	nextID int
	active map[int]func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{active: make(map[int]func())}
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.active[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
	}
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.active))
	for _, fn := range s.active {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

type recordingSink struct {
	mu          sync.Mutex
	titles      []string
	completions []Completion
}

func (r *recordingSink) Notify(title, _ string) {
	r.mu.Lock()
	r.titles = append(r.titles, title)
	r.mu.Unlock()
}

func (r *recordingSink) PhaseCompleted(c Completion) {
	r.mu.Lock()
	r.completions = append(r.completions, c)
	r.mu.Unlock()
}

type harness struct {
	engine *Engine
	clock  *fakeClock
	sched  *manualScheduler
	sink   *recordingSink
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: newFakeClock(),
		sched: newManualScheduler(),
		sink:  &recordingSink{},
	}
	h.engine = New(DefaultConfig(),
		WithClock(h.clock),
		WithScheduler(h.sched),
		WithNotifier(h.sink),
		WithObserver(h.sink),
	)
	return h
}

// advance moves the clock forward and lets the pending tick run.
func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.sched.Fire()
}

// ============================================================
// Custom countdown
// ============================================================

func TestStartCustomRejectsNonPositive(t *testing.T) {
	h := newHarness(t)

	require.ErrorIs(t, h.engine.StartCustom(0), ErrInvalidDuration)
	require.ErrorIs(t, h.engine.StartCustom(-time.Second), ErrInvalidDuration)

	st := h.engine.Snapshot()
	assert.Equal(t, ModeIdle, st.Mode)
	assert.False(t, st.IsRunning)
	assert.Zero(t, h.sched.Active())
}

func TestStartCustom(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))

	st := h.engine.Snapshot()
	assert.Equal(t, ModeCustom, st.Mode)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.True(t, st.IsRunning)
	assert.False(t, st.IsPaused)
	assert.Equal(t, time.Minute, st.TimeRemaining)
	assert.Equal(t, time.Minute, st.Initial)
	assert.Equal(t, 1, h.sched.Active())
}

func TestStartCustomWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))
	h.advance(10 * time.Second)

	require.NoError(t, h.engine.StartCustom(5*time.Minute))

	st := h.engine.Snapshot()
	assert.Equal(t, time.Minute, st.Initial)
	assert.Equal(t, 50*time.Second, st.TimeRemaining)
	assert.Equal(t, 1, h.sched.Active())
}

func TestPauseResumeScenario(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(60*time.Second))

	h.advance(time.Second)
	h.engine.Pause()
	st := h.engine.Snapshot()
	assert.True(t, st.IsPaused)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 59*time.Second, st.TimeRemaining)
	assert.Zero(t, h.sched.Active())

	// Time spent paused must not count.
	h.clock.Advance(10 * time.Minute)
	assert.Equal(t, 59*time.Second, h.engine.Snapshot().TimeRemaining)

	h.engine.Resume()
	assert.Equal(t, 59*time.Second, h.engine.Snapshot().TimeRemaining)

	h.advance(time.Second)
	assert.Equal(t, 58*time.Second, h.engine.Snapshot().TimeRemaining)
}

func TestStartCustomWhilePausedResumes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))
	h.advance(20 * time.Second)
	h.engine.Pause()
	h.clock.Advance(time.Hour)

	require.NoError(t, h.engine.StartCustom(5*time.Minute))

	st := h.engine.Snapshot()
	assert.True(t, st.IsRunning)
	assert.Equal(t, time.Minute, st.Initial)
	assert.Equal(t, 40*time.Second, st.TimeRemaining)
}

func TestPauseWhenNotRunning(t *testing.T) {
	h := newHarness(t)
	h.engine.Pause()
	assert.False(t, h.engine.Snapshot().IsPaused)

	h.engine.Resume()
	assert.False(t, h.engine.Snapshot().IsRunning)
}

func TestToggle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))

	h.engine.Toggle()
	assert.True(t, h.engine.Snapshot().IsPaused)
	h.engine.Toggle()
	assert.True(t, h.engine.Snapshot().IsRunning)
}

func TestMonotonicCountdown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(10*time.Second))

	prev := h.engine.Snapshot().TimeRemaining
	for i := 0; i < 120; i++ {
		h.advance(73 * time.Millisecond)
		cur := h.engine.Snapshot().TimeRemaining
		require.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestJitteredTicksDoNotDrift(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))

	// Irregular tick spacing must still add up to real elapsed time.
	steps := []time.Duration{30, 250, 90, 410, 100, 5, 1115}
	var total time.Duration
	for _, ms := range steps {
		d := ms * time.Millisecond
		total += d
		h.advance(d)
	}
	assert.Equal(t, time.Minute-total, h.engine.Snapshot().TimeRemaining)
}

func TestProgressMatchesRemaining(t *testing.T) {
	h := newHarness(t)
	assert.Zero(t, h.engine.Snapshot().Progress())

	require.NoError(t, h.engine.StartCustom(40*time.Second))
	for i := 0; i < 8; i++ {
		h.advance(3 * time.Second)
		st := h.engine.Snapshot()
		want := float64(st.Initial-st.TimeRemaining) / float64(st.Initial) * 100
		assert.InDelta(t, want, st.Progress(), 1e-9)
	}
	assert.InDelta(t, 60.0, h.engine.Snapshot().Progress(), 1e-9)
}

func TestCustomNaturalExpiry(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(5*time.Second))

	h.advance(6 * time.Second)

	st := h.engine.Snapshot()
	assert.False(t, st.IsRunning)
	assert.False(t, st.IsPaused)
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Zero(t, st.TimeRemaining)
	assert.InDelta(t, 100.0, st.Progress(), 1e-9)
	assert.Zero(t, h.sched.Active())
	assert.Equal(t, []string{"Time's Up!"}, h.sink.titles)

	require.Len(t, h.sink.completions, 1)
	c := h.sink.completions[0]
	assert.Equal(t, ModeCustom, c.Mode)
	assert.Equal(t, 5*time.Second, c.Actual)
	assert.False(t, c.Skipped)
	assert.NotEmpty(t, c.RunID)

	// A new custom countdown can start afterwards.
	require.NoError(t, h.engine.StartCustom(time.Second))
	assert.True(t, h.engine.Snapshot().IsRunning)
}

func TestRemainingNeverExceedsInitial(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))

	// A clock stepping backwards must not push remaining above initial.
	h.clock.Advance(-5 * time.Second)
	assert.Equal(t, time.Minute, h.engine.Snapshot().TimeRemaining)
}

// ============================================================
// Pomodoro cycle
// ============================================================

func TestStartPomodoro(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()

	st := h.engine.Snapshot()
	assert.Equal(t, ModePomodoro, st.Mode)
	assert.Equal(t, PhaseStudy, st.Phase)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 25*time.Minute, st.TimeRemaining)
	assert.Zero(t, st.CompletedCycles)
	assert.Equal(t, 4, st.CyclesBeforeLongBreak)
}

func TestStudyCompletesToShortBreak(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()

	h.advance(25 * time.Minute)

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseShortBreak, st.Phase)
	assert.Equal(t, 1, st.CompletedCycles)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 5*time.Minute, st.TimeRemaining)
	assert.Equal(t, 1, h.sched.Active())
	assert.Equal(t, []string{"Short Break!"}, h.sink.titles)
}

func TestBreakReturnsToStudy(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	h.advance(25 * time.Minute)
	h.advance(5 * time.Minute)

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseStudy, st.Phase)
	assert.Equal(t, 1, st.CompletedCycles)
	assert.Equal(t, 25*time.Minute, st.TimeRemaining)
	assert.Equal(t, []string{"Short Break!", "Focus Time!"}, h.sink.titles)
}

func TestFourthStudyCompletionIsLongBreak(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()

	for i := 1; i <= 3; i++ {
		h.advance(25 * time.Minute)
		require.Equal(t, PhaseShortBreak, h.engine.Snapshot().Phase)
		h.advance(5 * time.Minute)
		require.Equal(t, PhaseStudy, h.engine.Snapshot().Phase)
	}
	h.advance(25 * time.Minute)

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseLongBreak, st.Phase)
	assert.Equal(t, 4, st.CompletedCycles)
	assert.Equal(t, 15*time.Minute, st.TimeRemaining)

	// The cycle continues past the long break without resetting the count.
	h.advance(15 * time.Minute)
	st = h.engine.Snapshot()
	assert.Equal(t, PhaseStudy, st.Phase)
	assert.Equal(t, 4, st.CompletedCycles)
}

func TestNextPhaseStartsWithoutGap(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()

	// The tick fires late; the break anchors at the moment of completion.
	h.advance(25*time.Minute + 2*time.Second)
	assert.Equal(t, 5*time.Minute, h.engine.Snapshot().TimeRemaining)

	h.advance(time.Minute)
	assert.Equal(t, 4*time.Minute, h.engine.Snapshot().TimeRemaining)
}

func TestStartPomodoroMidCycleIsNoop(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	h.advance(25 * time.Minute)

	h.engine.StartPomodoro()

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseShortBreak, st.Phase)
	assert.Equal(t, 1, st.CompletedCycles)
}

func TestStartPomodoroReplacesCustom(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))
	h.engine.StartPomodoro()

	st := h.engine.Snapshot()
	assert.Equal(t, ModePomodoro, st.Mode)
	assert.Equal(t, PhaseStudy, st.Phase)
	assert.Equal(t, 1, h.sched.Active())
}

func TestStartCustomDuringPomodoroIsNoop(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	require.NoError(t, h.engine.StartCustom(time.Minute))

	assert.Equal(t, ModePomodoro, h.engine.Snapshot().Mode)
}

func TestSkipMatchesNaturalExpiry(t *testing.T) {
	natural := newHarness(t)
	natural.engine.StartPomodoro()
	natural.advance(25 * time.Minute)

	skipped := newHarness(t)
	skipped.engine.StartPomodoro()
	skipped.advance(3 * time.Minute)
	require.True(t, skipped.engine.SkipPhase())

	a, b := natural.engine.Snapshot(), skipped.engine.Snapshot()
	assert.Equal(t, a.Phase, b.Phase)
	assert.Equal(t, a.CompletedCycles, b.CompletedCycles)
	assert.Equal(t, a.TimeRemaining, b.TimeRemaining)
	assert.Equal(t, natural.sink.titles, skipped.sink.titles)

	require.Len(t, skipped.sink.completions, 1)
	c := skipped.sink.completions[0]
	assert.True(t, c.Skipped)
	assert.Equal(t, 3*time.Minute, c.Actual)
	assert.Equal(t, 25*time.Minute, c.Planned)
	assert.Equal(t, 1, c.Cycle)
}

func TestSkipFromBreak(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	require.True(t, h.engine.SkipPhase())
	require.True(t, h.engine.SkipPhase())

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseStudy, st.Phase)
	assert.Equal(t, 1, st.CompletedCycles)
}

func TestSkipWhilePaused(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	h.advance(time.Minute)
	h.engine.Pause()

	require.True(t, h.engine.SkipPhase())

	st := h.engine.Snapshot()
	assert.Equal(t, PhaseShortBreak, st.Phase)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 1, h.sched.Active())
	assert.Equal(t, time.Minute, h.sink.completions[0].Actual)
}

func TestSkipWithoutCycleIsNoop(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.engine.SkipPhase())

	require.NoError(t, h.engine.StartCustom(time.Minute))
	assert.False(t, h.engine.SkipPhase())
	assert.Equal(t, ModeCustom, h.engine.Snapshot().Mode)
	assert.Empty(t, h.sink.titles)
}

func TestCustomCycleLength(t *testing.T) {
	h := newHarness(t)
	h.engine.SetConfig(Config{
		Study:                 time.Minute,
		ShortBreak:            10 * time.Second,
		LongBreak:             30 * time.Second,
		CyclesBeforeLongBreak: 2,
	})
	h.engine.StartPomodoro()

	h.engine.SkipPhase() // study 1
	assert.Equal(t, PhaseShortBreak, h.engine.Snapshot().Phase)
	h.engine.SkipPhase()
	h.engine.SkipPhase() // study 2
	st := h.engine.Snapshot()
	assert.Equal(t, PhaseLongBreak, st.Phase)
	assert.Equal(t, 30*time.Second, st.TimeRemaining)
}

// ============================================================
// Reset and tick ownership
// ============================================================

func TestResetIdempotent(t *testing.T) {
	h := newHarness(t)
	h.engine.StartPomodoro()
	h.advance(25 * time.Minute)

	h.engine.Reset()
	once := h.engine.Snapshot()
	h.engine.Reset()
	twice := h.engine.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, ModeIdle, twice.Mode)
	assert.Equal(t, PhaseIdle, twice.Phase)
	assert.False(t, twice.IsRunning)
	assert.False(t, twice.IsPaused)
	assert.Zero(t, twice.CompletedCycles)
	assert.Zero(t, twice.TimeRemaining)
	assert.Zero(t, twice.Progress())
	assert.Zero(t, h.sched.Active())
}

func TestStaleTickIgnoredAfterReset(t *testing.T) {
	clock := newFakeClock()
	var captured func()
	sched := schedulerFunc(func(_ time.Duration, fn func()) func() {
		captured = fn
		return func() {}
	})
	sink := &recordingSink{}
	e := New(DefaultConfig(), WithClock(clock), WithScheduler(sched), WithNotifier(sink))

	require.NoError(t, e.StartCustom(time.Second))
	stale := captured
	e.Reset()

	clock.Advance(time.Minute)
	stale()

	assert.Empty(t, sink.titles)
	assert.Equal(t, ModeIdle, e.Snapshot().Mode)
}

func TestSingleTickHandle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.StartCustom(time.Minute))
	h.engine.Pause()
	h.engine.Resume()
	h.engine.Pause()
	h.engine.Resume()
	h.engine.Reset()
	h.engine.StartPomodoro()
	h.engine.SkipPhase()
	h.engine.SkipPhase()

	assert.Equal(t, 1, h.sched.Active())
}

func TestNotifierMayReenterEngine(t *testing.T) {
	h := newHarness(t)
	var seen State
	h.engine.notifier = NotifierFunc(func(string, string) {
		seen = h.engine.Snapshot()
	})

	h.engine.StartPomodoro()
	h.advance(25 * time.Minute)

	assert.Equal(t, PhaseShortBreak, seen.Phase)
}

func TestTickerSchedulerRunsAndStops(t *testing.T) {
	var mu sync.Mutex
	count := 0
	cancel := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 3
	}, time.Second, time.Millisecond)

	cancel()
	cancel() // safe to call twice
}

func TestEngineWithRealClock(t *testing.T) {
	sink := &recordingSink{}
	e := New(Config{TickInterval: 5 * time.Millisecond}, WithNotifier(sink))
	require.NoError(t, e.StartCustom(30*time.Millisecond))

	require.Eventually(t, func() bool {
		return !e.Snapshot().IsRunning
	}, 2*time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []string{"Time's Up!"}, sink.titles)
}

// ============================================================
// Config
// ============================================================

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Study: time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, cfg.Study)
	assert.Equal(t, 5*time.Minute, cfg.ShortBreak)
	assert.Equal(t, 15*time.Minute, cfg.LongBreak)
	assert.Equal(t, 4, cfg.CyclesBeforeLongBreak)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
}

func TestPhaseNames(t *testing.T) {
	assert.Equal(t, "study", PhaseStudy.String())
	assert.Equal(t, "long_break", PhaseLongBreak.String())
	assert.Equal(t, "SHORT BREAK", PhaseShortBreak.Label())
	assert.Equal(t, "READY", PhaseIdle.Label())
	assert.Equal(t, "custom", ModeCustom.String())
}

type schedulerFunc func(time.Duration, func()) func()

func (f schedulerFunc) Every(d time.Duration, fn func()) func() { return f(d, fn) }
