package store

import "time"

type Goal struct {
	ID          int64
	Name        string
	Mood        string // motivated, moderate, low
	Intensity   string // high, medium, light
	HoursPerDay float64
	Days        []string
	Deadline    string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PlanTask struct {
	ID        int64
	GoalID    int64
	Week      int
	WeekTitle string
	Date      string // YYYY-MM-DD
	Title     string
	Duration  string
	Done      bool
	CreatedAt time.Time

	GoalName string // filled by joins
}

// FocusPhase is one finished segment of a focus run.
type FocusPhase struct {
	ID             int64
	RunID          string
	Kind           string // custom, study, short_break, long_break
	PlannedSeconds int64
	ActualSeconds  int64
	Cycle          int
	Skipped        bool
	CompletedAt    time.Time
}

type Setting struct {
	Key   string
	Value string
}

// PhaseFilter is used to filter focus phases in queries.
type PhaseFilter struct {
	RunID string
	Kind  string
	From  *time.Time
	To    *time.Time
	Limit int
}

// FocusDailySummary aggregates focus time per day.
type FocusDailySummary struct {
	Date         string
	FocusSeconds int64 // study + custom
	BreakSeconds int64
	StudyCount   int
	SkippedCount int
}

// Phase kinds stored in focus_phases.kind.
const (
	KindCustom     = "custom"
	KindStudy      = "study"
	KindShortBreak = "short_break"
	KindLongBreak  = "long_break"
)
