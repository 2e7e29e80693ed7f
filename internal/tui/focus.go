package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
)

const maxCustomMinutes = 600

type focusModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	state timer.State

	formActive bool
	form       *huh.Form
	minutes    *string // survives value copies
}

func newFocusModel(s *store.Store, e *timer.Engine) focusModel {
	minutes := strconv.Itoa(s.IntSetting("custom_minutes", 25))
	return focusModel{
		store:   s,
		engine:  e,
		state:   e.Snapshot(),
		minutes: &minutes,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg, notifyMsg:
		f.state = f.engine.Snapshot()
		return f, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Custom):
			if f.state.IsRunning {
				return f, func() tea.Msg {
					return statusMsg{text: "A timer is already running"}
				}
			}
			if f.state.IsPaused && f.state.Mode == timer.ModeCustom {
				// starting a paused custom countdown resumes it
				err := f.engine.StartCustom(f.state.TimeRemaining)
				f.state = f.engine.Snapshot()
				if err != nil {
					return f, func() tea.Msg { return errStatus("Custom timer: %v", err) }
				}
				return f, nil
			}
			return f.showCustomForm()

		case key.Matches(msg, keys.Pomodoro):
			if f.state.Mode == timer.ModePomodoro {
				return f, nil
			}
			applyFocusConfig(f.engine, f.store)
			f.engine.StartPomodoro()

		case key.Matches(msg, keys.Pause):
			f.engine.Toggle()

		case key.Matches(msg, keys.Skip):
			if !f.engine.SkipPhase() {
				f.state = f.engine.Snapshot()
				return f, func() tea.Msg {
					return statusMsg{text: "Nothing to skip. Start a pomodoro with p"}
				}
			}

		case key.Matches(msg, keys.Reset):
			f.engine.Reset()
		}
		f.state = f.engine.Snapshot()
	}
	return f, nil
}

func (f focusModel) showCustomForm() (focusModel, tea.Cmd) {
	*f.minutes = strconv.Itoa(f.store.IntSetting("custom_minutes", 25))

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes").
				Value(f.minutes).
				Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of minutes")
	}
	if n <= 0 || n > maxCustomMinutes {
		return fmt.Errorf("minutes must be between 1 and %d", maxCustomMinutes)
	}
	return nil
}

func (f focusModel) updateForm(msg tea.Msg) (focusModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		f.form = nil
		return f.startCustom(*f.minutes)
	}
	return f, cmd
}

func (f focusModel) startCustom(minutes string) (focusModel, tea.Cmd) {
	n, _ := strconv.Atoi(strings.TrimSpace(minutes))
	if err := f.engine.StartCustom(time.Duration(n) * time.Minute); err != nil {
		return f, func() tea.Msg { return errStatus("Custom timer: %v", err) }
	}
	f.state = f.engine.Snapshot()
	// the countdown runs even when the default cannot be remembered
	if err := f.store.SetSetting("custom_minutes", strconv.Itoa(n)); err != nil {
		return f, func() tea.Msg { return errStatus("Save custom minutes: %v", err) }
	}
	return f, nil
}

func (f focusModel) view() string {
	w := f.width - 4

	if f.formActive && f.form != nil {
		title := titleStyle.Render("Custom Timer")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
		)
	}

	st := f.state
	title := titleStyle.Render("Focus Timer")

	var timeDisplay, phaseLabel, indicator string
	style := phaseStyle(st)
	switch st.Mode {
	case timer.ModeIdle:
		timeDisplay = timerStyle.Width(w - 6).Render(formatCountdown(f.engine.Config().Study))
		phaseLabel = mutedStyle.Render("READY")
		indicator = mutedStyle.Render("Press p for a pomodoro or c for a custom timer")
	case timer.ModeCustom:
		timeDisplay = style.Width(w - 6).Render(formatCountdown(st.TimeRemaining))
		phaseLabel = style.Render("CUSTOM")
		indicator = renderProgressBar(st.Progress(), min(w-10, 40))
	case timer.ModePomodoro:
		timeDisplay = style.Width(w - 6).Render(formatCountdown(st.TimeRemaining))
		phaseLabel = style.Render(st.Phase.Label())
		indicator = lipgloss.JoinVertical(lipgloss.Center,
			renderProgressBar(st.Progress(), min(w-10, 40)),
			renderCycles(st),
		)
	}
	if st.IsPaused {
		phaseLabel += warningStyle.Render("  ⏸ PAUSED")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		indicator,
	)

	var controls string
	switch {
	case st.Mode == timer.ModeIdle:
		controls = mutedStyle.Render("p: pomodoro  c: custom")
	case st.Mode == timer.ModeCustom:
		controls = mutedStyle.Render("space: pause/resume  r: reset  p: switch to pomodoro")
	default:
		controls = mutedStyle.Render("space: pause/resume  n: skip phase  r: reset")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func phaseStyle(st timer.State) lipgloss.Style {
	if st.IsPaused {
		return timerPausedStyle
	}
	if st.Mode == timer.ModeCustom {
		return customPhaseStyle
	}
	switch st.Phase {
	case timer.PhaseStudy:
		return studyPhaseStyle
	case timer.PhaseShortBreak:
		return shortBreakPhaseStyle
	case timer.PhaseLongBreak:
		return longBreakPhaseStyle
	}
	return timerRunningStyle
}

// renderCycles draws one dot per study phase of the current set.
func renderCycles(st timer.State) string {
	n := st.CyclesBeforeLongBreak
	if n <= 0 {
		return ""
	}
	done := st.CompletedCycles % n
	if done == 0 && st.CompletedCycles > 0 && st.Phase == timer.PhaseLongBreak {
		done = n
	}

	var parts []string
	for i := 0; i < n; i++ {
		switch {
		case i < done:
			parts = append(parts, cycleDoneStyle.Render("●"))
		case i == done && st.Phase == timer.PhaseStudy:
			parts = append(parts, cycleCurrentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", done, n))
	return strings.Join(parts, " ") + counter
}

func renderProgressBar(percent float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	bar := progressFillStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, percent)
}
