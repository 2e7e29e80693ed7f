package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/export"
	"github.com/sadopc/studyfocus/internal/planner"
	"github.com/sadopc/studyfocus/internal/store"
)

// PlanGenerator produces a study plan for a goal intake.
type PlanGenerator interface {
	Generate(ctx context.Context, r planner.Request) (*planner.Plan, error)
}

// Coach answers free-form study questions.
type Coach interface {
	Chat(ctx context.Context, history []planner.Message, msg string) (planner.Answer, error)
	SuggestMaterials(ctx context.Context, goal string) (planner.Answer, error)
}

// Assistant is the planning backend the TUI talks to.
type Assistant interface {
	PlanGenerator
	Coach
}

var (
	moodOptions = []huh.Option[string]{
		huh.NewOption("Motivated", "motivated"),
		huh.NewOption("Moderate", "moderate"),
		huh.NewOption("Low", "low"),
	}
	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

const generateTimeout = 2 * time.Minute

type plannerModel struct {
	store  *store.Store
	ai     Assistant
	width  int
	height int

	goals        []store.Goal
	progress     map[int64][2]int // goal id -> done, total
	tasks        []store.PlanTask
	cursor       int
	taskCursor   int
	viewingTasks bool
	generating   bool
	suggesting   bool
	spinner      spinner.Model

	// last material suggestions, shown over the goal list
	materials     *planner.Answer
	materialsGoal string

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName     *string
	formMood     *string
	formHours    *string
	formDays     *[]string
	formDeadline *string
}

func newPlannerModel(s *store.Store, ai Assistant) plannerModel {
	name, mood, hours, deadline := "", "moderate", "", ""
	days := []string{}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return plannerModel{
		store:        s,
		ai:           ai,
		progress:     map[int64][2]int{},
		spinner:      sp,
		formName:     &name,
		formMood:     &mood,
		formHours:    &hours,
		formDays:     &days,
		formDeadline: &deadline,
	}
}

func (p *plannerModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type goalsDataMsg struct {
	goals    []store.Goal
	progress map[int64][2]int
}

type planTasksDataMsg struct {
	tasks []store.PlanTask
}

func (p plannerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		goals, _ := p.store.ListGoals(false)
		progress := make(map[int64][2]int, len(goals))
		for _, g := range goals {
			done, total, _ := p.store.PlanProgress(g.ID)
			progress[g.ID] = [2]int{done, total}
		}
		return goalsDataMsg{goals: goals, progress: progress}
	}
}

func (p plannerModel) refreshTasks() tea.Cmd {
	if p.cursor >= len(p.goals) {
		return nil
	}
	gid := p.goals[p.cursor].ID
	return func() tea.Msg {
		tasks, _ := p.store.ListPlanTasks(gid)
		return planTasksDataMsg{tasks: tasks}
	}
}

func (p plannerModel) selectedGoal() (store.Goal, bool) {
	if p.cursor >= len(p.goals) {
		return store.Goal{}, false
	}
	return p.goals[p.cursor], true
}

func (p plannerModel) update(msg tea.Msg) (plannerModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case goalsDataMsg:
		p.goals = msg.goals
		p.progress = msg.progress
		if p.cursor >= len(p.goals) {
			p.cursor = max(0, len(p.goals)-1)
		}
		return p, nil

	case planTasksDataMsg:
		p.tasks = msg.tasks
		if p.taskCursor >= len(p.tasks) {
			p.taskCursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case planGeneratedMsg:
		p.generating = false
		cmds := []tea.Cmd{p.refresh()}
		if p.viewingTasks {
			cmds = append(cmds, p.refreshTasks())
		}
		return p, tea.Batch(cmds...)

	case materialsMsg:
		p.suggesting = false
		ans := msg.answer
		p.materials = &ans
		p.materialsGoal = msg.goal
		return p, nil

	case spinner.TickMsg:
		if !p.generating && !p.suggesting {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case statusMsg:
		// generation failures come back as errors
		if msg.isError {
			p.generating = false
			p.suggesting = false
		}
		return p, nil

	case tea.KeyMsg:
		if p.materials != nil {
			if key.Matches(msg, keys.Back) {
				p.materials = nil
			}
			return p, nil
		}
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateGoalList(msg)
	}
	return p, nil
}

func (p plannerModel) updateGoalList(msg tea.KeyMsg) (plannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.goals)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.goals) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return p.showGoalForm()
	case key.Matches(msg, keys.Generate):
		return p.generate()
	case key.Matches(msg, keys.Suggest):
		return p.suggest()
	case key.Matches(msg, keys.Markdown):
		return p, p.exportMarkdown()
	case key.Matches(msg, keys.Delete):
		if g, ok := p.selectedGoal(); ok {
			if err := p.store.ArchiveGoal(g.ID); err != nil {
				return p, func() tea.Msg { return errStatus("Error: %v", err) }
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p plannerModel) updateTaskView(msg tea.KeyMsg) (plannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, p.refresh()
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(p.tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.Enter):
		if p.taskCursor < len(p.tasks) {
			t := p.tasks[p.taskCursor]
			if err := p.store.SetTaskDone(t.ID, !t.Done); err != nil {
				return p, func() tea.Msg { return errStatus("Error: %v", err) }
			}
			p.tasks[p.taskCursor].Done = !t.Done
			return p, func() tea.Msg { return taskToggledMsg{} }
		}
	case key.Matches(msg, keys.Generate):
		return p.generate()
	case key.Matches(msg, keys.Markdown):
		return p, p.exportMarkdown()
	}
	return p, nil
}

func (p plannerModel) showGoalForm() (plannerModel, tea.Cmd) {
	*p.formName = ""
	*p.formMood = "moderate"
	*p.formHours = ""
	*p.formDays = []string{"Monday", "Wednesday", "Friday"}
	*p.formDeadline = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What do you want to learn?").Value(p.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("goal is required")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("How motivated are you?").Options(moodOptions...).Value(p.formMood),
			huh.NewInput().Title("Hours per day (blank for mood default)").Value(p.formHours).
				Validate(validateHours),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Study days").Options(huh.NewOptions(weekdays...)...).Value(p.formDays),
			huh.NewInput().Title("Deadline (YYYY-MM-DD, optional)").Value(p.formDeadline).
				Validate(validateDeadline),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func validateHours(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 || h > 16 {
		return errors.New("hours must be a number between 0 and 16")
	}
	return nil
}

func validateDeadline(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return errors.New("use the YYYY-MM-DD format")
	}
	return nil
}

func (p plannerModel) updateForm(msg tea.Msg) (plannerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p, p.createGoal()
	}
	return p, cmd
}

func (p plannerModel) goalFromForm() store.Goal {
	hours, _ := strconv.ParseFloat(strings.TrimSpace(*p.formHours), 64)
	mood := *p.formMood
	if hours <= 0 {
		hours = float64(planner.BaseHours(planner.Intensity(mood)))
	}
	return store.Goal{
		Name:        strings.TrimSpace(*p.formName),
		Mood:        mood,
		Intensity:   planner.Intensity(mood),
		HoursPerDay: hours,
		Days:        append([]string(nil), *p.formDays...),
		Deadline:    strings.TrimSpace(*p.formDeadline),
	}
}

func (p plannerModel) createGoal() tea.Cmd {
	g := p.goalFromForm()
	if g.Name == "" {
		return nil
	}
	return func() tea.Msg {
		if _, err := p.store.CreateGoal(g); err != nil {
			return errStatus("Create goal: %v", err)
		}
		return statusMsg{text: fmt.Sprintf("Goal %q created. Press g to generate a plan", g.Name)}
	}
}

func (p plannerModel) generate() (plannerModel, tea.Cmd) {
	g, ok := p.selectedGoal()
	if !ok || p.generating {
		return p, nil
	}
	p.generating = true

	s, gen := p.store, p.ai
	req := planner.Request{
		Goal:        g.Name,
		Mood:        g.Mood,
		Deadline:    g.Deadline,
		HoursPerDay: g.HoursPerDay,
		Days:        g.Days,
	}
	return p, tea.Batch(
		func() tea.Msg { return statusMsg{text: fmt.Sprintf("Generating plan for %q...", g.Name)} },
		p.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
			defer cancel()

			plan, err := gen.Generate(ctx, req)
			if err != nil {
				return errStatus("Generate plan: %v", err)
			}
			n, err := s.SavePlan(g.ID, plan)
			if err != nil {
				return errStatus("Save plan: %v", err)
			}
			return planGeneratedMsg{goalID: g.ID, tasks: n, fallback: plan.Fallback}
		},
	)
}

// suggest asks the coach which kinds of material suit the selected goal.
func (p plannerModel) suggest() (plannerModel, tea.Cmd) {
	g, ok := p.selectedGoal()
	if !ok || p.suggesting {
		return p, nil
	}
	p.suggesting = true

	coach := p.ai
	return p, tea.Batch(
		p.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
			defer cancel()

			ans, err := coach.SuggestMaterials(ctx, g.Name)
			if err != nil {
				return errStatus("Suggest materials: %v", err)
			}
			return materialsMsg{goalID: g.ID, goal: g.Name, answer: ans}
		},
	)
}

func (p plannerModel) exportMarkdown() tea.Cmd {
	g, ok := p.selectedGoal()
	if !ok {
		return nil
	}
	s := p.store
	return func() tea.Msg {
		plan, err := s.LoadPlan(g.ID)
		if err != nil {
			return errStatus("Export plan: %v", err)
		}
		if plan == nil {
			return statusMsg{text: "No plan yet. Press g to generate one", isError: true}
		}
		tasks, _ := s.ListPlanTasks(g.ID)

		home, _ := os.UserHomeDir()
		path := filepath.Join(home, fmt.Sprintf("studyfocus-plan-%s.md", slug(g.Name)))
		if err := export.ToMarkdown(plan, tasks, path); err != nil {
			return errStatus("Export plan: %v", err)
		}
		return exportDoneMsg{path: path}
	}
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "goal"
	}
	return out
}

func (p plannerModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Goal")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.materials != nil {
		return p.renderMaterials()
	}
	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderGoalList()
}

func (p plannerModel) renderMaterials() string {
	w := p.width - 4
	title := titleStyle.Render("Study Materials: " + p.materialsGoal)

	rows := []string{title}
	if p.materials.Fallback {
		rows = append(rows, mutedStyle.Render("Offline suggestions"))
	}
	body := lipgloss.NewStyle().Width(max(20, w-6)).Render(p.materials.Text)
	rows = append(rows, "", body, "", mutedStyle.Render("  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p plannerModel) renderGoalList() string {
	w := p.width - 4
	title := titleStyle.Render("Study Goals")

	if len(p.goals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No goals yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %-10s %-8s %s", "Goal", "Mood", "Hours", "Progress")))

	for i, g := range p.goals {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		prog := mutedStyle.Render("no plan")
		if pr := p.progress[g.ID]; pr[1] > 0 {
			prog = fmt.Sprintf("%d/%d", pr[0], pr[1])
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s %-10s %-8.1f", cursor, g.Name, g.Mood, g.HoursPerDay))+" "+prog)
	}

	if p.generating {
		rows = append(rows, "", "  "+p.spinner.View()+warningStyle.Render(" Generating plan..."))
	}
	if p.suggesting {
		rows = append(rows, "", "  "+p.spinner.View()+warningStyle.Render(" Finding materials..."))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  g: generate  s: materials  m: export  d: archive  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p plannerModel) renderTaskView() string {
	w := p.width - 4
	g, _ := p.selectedGoal()
	title := titleStyle.Render(fmt.Sprintf("%s: Plan", g.Name))

	if len(p.tasks) == 0 {
		msg := "No plan yet. Press g to generate one."
		if p.generating {
			msg = p.spinner.View() + " Generating plan..."
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render(msg))
		return panelStyle.Width(w).Render(content)
	}

	// keep the cursor on screen
	visible := max(5, p.height-8)
	start := 0
	if p.taskCursor >= visible {
		start = p.taskCursor - visible + 1
	}
	end := min(len(p.tasks), start+visible)

	var rows []string
	rows = append(rows, title, "")
	lastWeek := -1
	for i := start; i < end; i++ {
		t := p.tasks[i]
		if t.Week != lastWeek {
			rows = append(rows, highlightStyle.Render(fmt.Sprintf("Week %d: %s", t.Week, t.WeekTitle)))
			lastWeek = t.Week
		}
		cursor := "  "
		style := normalItemStyle
		if t.Done {
			style = doneItemStyle
		}
		if i == p.taskCursor {
			cursor = "> "
			if !t.Done {
				style = selectedItemStyle
			}
		}
		check := "[ ]"
		if t.Done {
			check = "[x]"
		}
		rows = append(rows, cursor+mutedStyle.Render(t.Date+" ")+style.Render(check+" "+t.Title))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: toggle done  g: regenerate  m: export  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
