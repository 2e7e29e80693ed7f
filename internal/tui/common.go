package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/studyfocus/internal/planner"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewFocus
	viewPlanner
	viewReports
	viewSettings
	viewChat
)

var viewNames = []string{"Dashboard", "Focus", "Planner", "Reports", "Settings", "Coach"}

// refreshInterval is how often the UI re-reads the engine. The engine keeps
// its own tick; this only drives redraws.
const refreshInterval = 200 * time.Millisecond

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// notifyMsg carries an engine alert into the program.
type notifyMsg struct {
	title string
	body  string
}

type exportDoneMsg struct {
	path string
}

type planGeneratedMsg struct {
	goalID   int64
	tasks    int
	fallback bool
}

type taskToggledMsg struct{}

type materialsMsg struct {
	goalID int64
	goal   string
	answer planner.Answer
}

type chatReplyMsg struct {
	answer planner.Answer
}

// --- Helpers ---

func errStatus(format string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, err), isError: true}
}

// applyFocusConfig pushes the stored phase durations into the engine,
// keeping the engine's tick interval.
func applyFocusConfig(e *timer.Engine, s *store.Store) {
	cfg := s.FocusConfig()
	cfg.TickInterval = e.Config().TickInterval
	e.SetConfig(cfg)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// formatCountdown renders mm:ss, rounding partial seconds up so a fresh
// 25:00 countdown does not show 24:59 on its first frame.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
