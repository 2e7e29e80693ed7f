package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorMuted     = lipgloss.Color("#666666")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")

	// one hue per pomodoro phase
	colorStudy      = lipgloss.Color("#FF6B6B")
	colorShortBreak = lipgloss.Color("#2ECC71")
	colorLongBreak  = lipgloss.Color("#7AA2F7")
	colorCustom     = lipgloss.Color("#BB9AF7")
)

// Layout
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)
)

// Focus phases. The countdown takes the colour of the phase it counts.
var (
	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	timerStyle        = countdownStyle.Foreground(colorPrimary)
	timerRunningStyle = countdownStyle.Foreground(colorShortBreak)
	timerPausedStyle  = countdownStyle.Foreground(colorWarning)

	studyPhaseStyle      = countdownStyle.Foreground(colorStudy)
	shortBreakPhaseStyle = countdownStyle.Foreground(colorShortBreak)
	longBreakPhaseStyle  = countdownStyle.Foreground(colorLongBreak)
	customPhaseStyle     = countdownStyle.Foreground(colorCustom)

	cycleDoneStyle    = lipgloss.NewStyle().Foreground(colorShortBreak)
	cycleCurrentStyle = lipgloss.NewStyle().Foreground(colorStudy)

	progressFillStyle  = lipgloss.NewStyle().Foreground(colorPrimary)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(colorSubtle)
)

// Text
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	accentStyle    = lipgloss.NewStyle().Foreground(colorStudy)
	successStyle   = lipgloss.NewStyle().Foreground(colorShortBreak)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)

	doneItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)

// Coach
var (
	chatUserStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
	chatCoachStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	chatInputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorSubtle)
)
