package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	mode      reportMode
	summaries []store.FocusDailySummary
	offset    int // weeks or 7-day blocks offset from today (0 = current)
	weekStart time.Weekday
	studies   int
	focusSecs int64

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store:     s,
		weekStart: time.Monday,
		chart:     barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	summaries []store.FocusDailySummary
	weekStart time.Weekday
	studies   int
	focusSecs int64
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ws := time.Monday
		if v, err := r.store.GetSetting("week_start"); err == nil && v == "sunday" {
			ws = time.Sunday
		}
		r.weekStart = ws

		from, to := r.dateRange()
		summaries, _ := r.store.GetFocusDailySummary(from, to)
		studies, secs, _ := r.store.GetFocusStats(from, to)
		return reportsDataMsg{summaries: summaries, weekStart: ws, studies: studies, focusSecs: secs}
	}
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch r.mode {
	case reportWeekly:
		back := (int(today.Weekday()) - int(r.weekStart) + 7) % 7
		startOfWeek := today.AddDate(0, 0, -back-7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		// Daily: last 7 days
		end := today.AddDate(0, 0, 1-7*r.offset)
		start := end.AddDate(0, 0, -7)
		return start, end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.summaries = msg.summaries
		r.weekStart = msg.weekStart
		r.studies = msg.studies
		r.focusSecs = msg.focusSecs
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

var (
	focusBarStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	breakBarStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	emptyBarStyle = lipgloss.NewStyle().Foreground(colorSubtle)
)

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.FocusDailySummary, len(r.summaries))
	for _, s := range r.summaries {
		byDate[s.Date] = s
	}

	from, to := r.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s, ok := byDate[d.Format("2006-01-02")]
		values := []barchart.BarValue{{Name: "", Value: 0, Style: emptyBarStyle}}
		if ok {
			values = []barchart.BarValue{
				{Name: "Focus", Value: float64(s.FocusSeconds) / 60, Style: focusBarStyle},
				{Name: "Break", Value: float64(s.BreakSeconds) / 60, Style: breakBarStyle},
			}
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	totals := fmt.Sprintf("  %s focused  %s pomodoros",
		highlightStyle.Render(formatHours(r.focusSecs)),
		highlightStyle.Render(fmt.Sprintf("%d", r.studies)),
	)
	legend := fmt.Sprintf("  %s focus min  %s break min", focusBarStyle.Render("●"), breakBarStyle.Render("●"))

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, totals, "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No focus sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %8s %8s", "Date", "Focus", "Breaks", "Studies", "Skipped")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	for _, s := range r.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10s %8d %8d",
			s.Date, formatSeconds(s.FocusSeconds), formatSeconds(s.BreakSeconds), s.StudyCount, s.SkippedCount,
		))
	}

	return strings.Join(rows, "\n")
}
