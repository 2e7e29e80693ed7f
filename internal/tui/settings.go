package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
)

type settingsModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focusStudy      *string
	focusShortBreak *string
	focusLongBreak  *string
	focusCycles     *string
	customMinutes   *string
	dailyGoal       *string
	weekStart       *string
}

func newSettingsModel(s *store.Store, e *timer.Engine) settingsModel {
	fs, fsb, flb, fc := "", "", "", ""
	cm, dg, ws := "", "", ""
	return settingsModel{
		store:           s,
		engine:          e,
		focusStudy:      &fs,
		focusShortBreak: &fsb,
		focusLongBreak:  &flb,
		focusCycles:     &fc,
		customMinutes:   &cm,
		dailyGoal:       &dg,
		weekStart:       &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.focusStudy = secsToMin(s.getVal("focus_study", "1500"))
	*s.focusShortBreak = secsToMin(s.getVal("focus_short_break", "300"))
	*s.focusLongBreak = secsToMin(s.getVal("focus_long_break", "900"))
	*s.focusCycles = s.getVal("focus_cycles", "4")
	*s.customMinutes = s.getVal("custom_minutes", "25")
	*s.dailyGoal = secsToHours(s.getVal("daily_goal", "7200"))
	*s.weekStart = s.getVal("week_start", "monday")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Study (min)").Value(s.focusStudy).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(s.focusShortBreak).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.focusLongBreak).Validate(positiveInt),
			huh.NewInput().Title("Study sessions before long break").Value(s.focusCycles).Validate(positiveInt),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Custom timer default (min)").Value(s.customMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Daily focus goal (hours)").Value(s.dailyGoal),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg { return errStatus("Save settings: %v", err) }
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved. Durations apply from the next phase"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := []store.Setting{
		{Key: "focus_study", Value: minToSecs(*s.focusStudy)},
		{Key: "focus_short_break", Value: minToSecs(*s.focusShortBreak)},
		{Key: "focus_long_break", Value: minToSecs(*s.focusLongBreak)},
		{Key: "focus_cycles", Value: strings.TrimSpace(*s.focusCycles)},
		{Key: "custom_minutes", Value: strings.TrimSpace(*s.customMinutes)},
		{Key: "daily_goal", Value: hoursToSecs(*s.dailyGoal)},
		{Key: "week_start", Value: *s.weekStart},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return fmt.Errorf("set %s: %w", v.Key, err)
		}
	}
	applyFocusConfig(s.engine, s.store)
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "focus_study", "focus_short_break", "focus_long_break":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "custom_minutes":
		return v + " min"
	case "daily_goal":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}
