package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
)

type dashboardModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	state        timer.State
	todayFocus   int64
	dailyGoal    int64
	todayTasks   []store.PlanTask
	recentPhases []store.FocusPhase
	cursor       int
}

func newDashboardModel(s *store.Store, e *timer.Engine) dashboardModel {
	return dashboardModel{
		store:  s,
		engine: e,
		state:  e.Snapshot(),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	todayFocus   int64
	dailyGoal    int64
	todayTasks   []store.PlanTask
	recentPhases []store.FocusPhase
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := d.store.GetTodayFocus()
		tasks, _ := d.store.TasksForDate(time.Now().Format("2006-01-02"))
		phases, _ := d.store.ListPhases(store.PhaseFilter{Limit: 5})

		return dashboardDataMsg{
			todayFocus:   total,
			dailyGoal:    int64(d.store.IntSetting("daily_goal", 7200)),
			todayTasks:   tasks,
			recentPhases: phases,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayFocus = msg.todayFocus
		d.dailyGoal = msg.dailyGoal
		d.todayTasks = msg.todayTasks
		d.recentPhases = msg.recentPhases
		if d.cursor >= len(d.todayTasks) {
			d.cursor = max(0, len(d.todayTasks)-1)
		}
		return d, nil

	case tickMsg:
		d.state = d.engine.Snapshot()
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.todayTasks)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Enter):
			return d.toggleTask()
		case key.Matches(msg, keys.Pause):
			d.engine.Toggle()
			d.state = d.engine.Snapshot()
		case key.Matches(msg, keys.Pomodoro):
			if d.state.Mode == timer.ModeIdle {
				applyFocusConfig(d.engine, d.store)
				d.engine.StartPomodoro()
				d.state = d.engine.Snapshot()
			}
		}
	}
	return d, nil
}

func (d dashboardModel) toggleTask() (dashboardModel, tea.Cmd) {
	if d.cursor >= len(d.todayTasks) {
		return d, nil
	}
	t := d.todayTasks[d.cursor]
	if err := d.store.SetTaskDone(t.ID, !t.Done); err != nil {
		return d, func() tea.Msg { return errStatus("Error: %v", err) }
	}
	d.todayTasks[d.cursor].Done = !t.Done
	return d, d.loadData()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderSummaryPanel(contentWidth),
		d.renderTasksPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	st := d.state

	if st.Mode == timer.ModeIdle {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("--:--"),
			mutedStyle.Render("■  READY"),
			mutedStyle.Render("Press p to start a pomodoro, 2 for the focus view"),
		)
		return panelStyle.Width(w).Render(content)
	}

	label := "CUSTOM"
	if st.Mode == timer.ModePomodoro {
		label = fmt.Sprintf("%s  %d/%d", st.Phase.Label(), st.CompletedCycles%st.CyclesBeforeLongBreak, st.CyclesBeforeLongBreak)
	}

	var timeDisplay, indicator string
	if st.IsPaused {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatCountdown(st.TimeRemaining))
		indicator = warningStyle.Render("⏸  PAUSED  " + label)
	} else {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatCountdown(st.TimeRemaining))
		indicator = successStyle.Render("●  " + label)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(d.todayFocus))
	goal := mutedStyle.Render(" of " + formatHours(d.dailyGoal) + " goal")
	header := fmt.Sprintf("%s  %s%s", title, total, goal)

	var pct float64
	if d.dailyGoal > 0 {
		pct = min(100, float64(d.todayFocus)/float64(d.dailyGoal)*100)
	}

	rows := []string{header, renderProgressBar(pct, min(w-12, 50))}
	if len(d.recentPhases) == 0 {
		rows = append(rows, mutedStyle.Render("No focus sessions yet"))
	}
	for _, p := range d.recentPhases {
		status := "✓"
		if p.Skipped {
			status = "»"
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-12s %s",
			status, p.CompletedAt.Local().Format("15:04"), p.Kind, formatSeconds(p.ActualSeconds)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTasksPanel(w int) string {
	title := titleStyle.Render("Today's Tasks")
	if len(d.todayTasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing planned for today. Press 3 to plan a goal."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title}
	for i, t := range d.todayTasks {
		cursor := "  "
		style := normalItemStyle
		if t.Done {
			style = doneItemStyle
		}
		if i == d.cursor {
			cursor = "> "
			if !t.Done {
				style = selectedItemStyle
			}
		}
		check := "[ ]"
		if t.Done {
			check = "[x]"
		}
		rows = append(rows, cursor+style.Render(check+" "+t.Title)+mutedStyle.Render("  "+t.GoalName))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: toggle done"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
