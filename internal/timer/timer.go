package timer

import (
	"errors"
	"time"
)

// ErrInvalidDuration is returned by StartCustom for non-positive durations.
var ErrInvalidDuration = errors.New("invalid duration")

// Mode is the kind of countdown the engine is driving.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCustom
	ModePomodoro
)

var modeNames = map[Mode]string{
	ModeIdle:     "idle",
	ModeCustom:   "custom",
	ModePomodoro: "pomodoro",
}

func (m Mode) String() string { return modeNames[m] }

// Phase is one segment of the Pomodoro cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStudy
	PhaseShortBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "idle",
	PhaseStudy:      "study",
	PhaseShortBreak: "short_break",
	PhaseLongBreak:  "long_break",
}

func (p Phase) String() string { return phaseNames[p] }

// Label is the human readable phase name.
func (p Phase) Label() string {
	switch p {
	case PhaseStudy:
		return "STUDY"
	case PhaseShortBreak:
		return "SHORT BREAK"
	case PhaseLongBreak:
		return "LONG BREAK"
	}
	return "READY"
}

// Config holds the phase durations and tick resolution.
type Config struct {
	Study                 time.Duration
	ShortBreak            time.Duration
	LongBreak             time.Duration
	CyclesBeforeLongBreak int
	TickInterval          time.Duration
}

func DefaultConfig() Config {
	return Config{
		Study:                 25 * time.Minute,
		ShortBreak:            5 * time.Minute,
		LongBreak:             15 * time.Minute,
		CyclesBeforeLongBreak: 4,
		TickInterval:          100 * time.Millisecond,
	}
}

// withDefaults replaces unusable values with their defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Study <= 0 {
		c.Study = d.Study
	}
	if c.ShortBreak <= 0 {
		c.ShortBreak = d.ShortBreak
	}
	if c.LongBreak <= 0 {
		c.LongBreak = d.LongBreak
	}
	if c.CyclesBeforeLongBreak <= 0 {
		c.CyclesBeforeLongBreak = d.CyclesBeforeLongBreak
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	return c
}

func (c Config) duration(p Phase) time.Duration {
	switch p {
	case PhaseStudy:
		return c.Study
	case PhaseShortBreak:
		return c.ShortBreak
	case PhaseLongBreak:
		return c.LongBreak
	}
	return 0
}

// State is a point-in-time view of the engine for rendering.
type State struct {
	Mode                  Mode
	Phase                 Phase
	IsRunning             bool
	IsPaused              bool
	TimeRemaining         time.Duration
	Initial               time.Duration
	CompletedCycles       int
	CyclesBeforeLongBreak int
}

// Progress returns the elapsed share of the current segment in percent.
func (s State) Progress() float64 {
	if s.Initial <= 0 {
		return 0
	}
	return float64(s.Initial-s.TimeRemaining) / float64(s.Initial) * 100
}

// Completion describes a finished (or skipped) segment.
type Completion struct {
	RunID   string
	Mode    Mode
	Phase   Phase // PhaseIdle for custom countdowns
	Planned time.Duration
	Actual  time.Duration
	Cycle   int // completed study cycles after this segment
	Skipped bool
	At      time.Time
}

// Notifier receives user-visible alerts. Calls are fire-and-forget.
type Notifier interface {
	Notify(title, body string)
}

// Observer is told about every completed segment.
type Observer interface {
	PhaseCompleted(c Completion)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, body string)

func (f NotifierFunc) Notify(title, body string) { f(title, body) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

type nopObserver struct{}

func (nopObserver) PhaseCompleted(Completion) {}
