package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/export"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	focus     focusModel
	planner   plannerModel
	reports   reportsModel
	settings  settingsModel
	chat      chatModel

	help      help.Model
	status    string
	statusErr bool
	alert     string
	bell      func()
}

func NewApp(s *store.Store, e *timer.Engine, ai Assistant) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		engine:     e,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(s, e),
		focus:      newFocusModel(s, e),
		planner:    newPlannerModel(s, ai),
		reports:    newReportsModel(s),
		settings:   newSettingsModel(s, e),
		chat:       newChatModel(ai),
		help:       h,
		bell:       func() {},
	}
}

// WithBell sets how phase alerts ring the terminal bell. Pass the Bell
// method of the program's Output so it shares the renderer's writer.
func (a App) WithBell(ring func()) App {
	if ring != nil {
		a.bell = ring
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.planner.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.planner.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.chat.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewFocus
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewPlanner
			return a, a.planner.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab6):
			a.activeView = viewChat
			var cmd tea.Cmd
			a.chat, cmd = a.chat.focus()
			return a, cmd
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewChat {
				var cmd tea.Cmd
				a.chat, cmd = a.chat.focus()
				return a, cmd
			}
			return a, a.refreshCurrentView()
		}
		a.alert = ""

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		a.focus, cmd = a.focus.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case notifyMsg:
		a.alert = msg.title + " " + msg.body
		a.focus, _ = a.focus.update(msg)
		cmds = append(cmds, a.ringBell(), a.dashboard.loadData())
		if a.activeView == viewReports {
			cmds = append(cmds, a.reports.refresh())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.planner, _ = a.planner.update(msg)
			a.chat, _ = a.chat.update(msg)
		}
		return a, nil

	case planGeneratedMsg:
		a.status = fmt.Sprintf("Plan saved with %d tasks", msg.tasks)
		a.statusErr = false
		if msg.fallback {
			a.status += " (offline template)"
		}
		var cmd tea.Cmd
		a.planner, cmd = a.planner.update(msg)
		return a, tea.Batch(cmd, a.dashboard.loadData())

	case spinner.TickMsg:
		// each spinner ignores ticks addressed to the other
		var pcmd, ccmd tea.Cmd
		a.planner, pcmd = a.planner.update(msg)
		a.chat, ccmd = a.chat.update(msg)
		return a, tea.Batch(pcmd, ccmd)

	case materialsMsg:
		a.status = "Materials ready for " + msg.goal
		a.statusErr = false
		var cmd tea.Cmd
		a.planner, cmd = a.planner.update(msg)
		return a, cmd

	case chatReplyMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		return a, cmd

	case taskToggledMsg:
		return a, a.dashboard.loadData()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// ringBell rings the terminal bell once.
func (a App) ringBell() tea.Cmd {
	ring := a.bell
	return func() tea.Msg {
		ring()
		return nil
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewPlanner:
		a.planner, cmd = a.planner.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	case viewChat:
		a.chat, cmd = a.chat.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewFocus:
		return a.focus.formActive
	case viewPlanner:
		return a.planner.formActive
	case viewSettings:
		return a.settings.formActive
	case viewChat:
		return a.chat.input.Focused()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewPlanner:
		return a.planner.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewFocus:
		content = a.focus.view()
	case viewPlanner:
		content = a.planner.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	case viewChat:
		content = a.chat.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyfocus")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.alert != "" {
		status = statusBarStyle.Render(" " + a.alert)
	} else if a.status != "" && a.statusErr {
		status = errorStyle.Render(" " + a.status)
	} else if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	st := a.focus.state
	if st.Mode != timer.ModeIdle {
		label := "custom"
		if st.Mode == timer.ModePomodoro {
			label = st.Phase.String()
		}
		timerInfo = successStyle.Render(" ● " + label + " " + formatCountdown(st.TimeRemaining))
		if st.IsPaused {
			timerInfo = warningStyle.Render(" ⏸ " + label + " " + formatCountdown(st.TimeRemaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Focus History")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s := a.store
	return func() tea.Msg {
		phases, err := s.ListPhases(store.PhaseFilter{})
		if err != nil {
			return errStatus("Export error: %v", err)
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("studyfocus-export-%s.csv", dateStr))
			if err := export.ToCSV(phases, path); err != nil {
				return errStatus("CSV error: %v", err)
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("studyfocus-export-%s.json", dateStr))
			if err := export.ToJSON(phases, path); err != nil {
				return errStatus("JSON error: %v", err)
			}
		}

		return exportDoneMsg{path: path}
	}
}
