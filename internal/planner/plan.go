package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingGoal = errors.New("goal is required")
	ErrMissingMood = errors.New("mood is required")
	ErrNoJSON      = errors.New("no JSON object in response")
)

// Plan is a multi-week study plan for one goal.
type Plan struct {
	Goal  string `json:"goal"`
	Mood  string `json:"mood"`
	Weeks []Week `json:"weeks"`

	// Fallback is set when the plan was built locally instead of generated.
	Fallback bool `json:"fallback,omitempty"`
}

type Week struct {
	Week       int         `json:"week"`
	Title      string      `json:"title"`
	Topics     []string    `json:"topics"`
	Duration   string      `json:"duration"`
	Days       []string    `json:"days"`
	DailyTasks []DailyTask `json:"dailyTasks"`
}

type DailyTask struct {
	Date      string   `json:"date"`
	Tasks     []string `json:"tasks"`
	Duration  string   `json:"duration"`
	Intensity string   `json:"intensity"`
}

// Request is the goal intake used to build a plan.
type Request struct {
	Goal        string
	Mood        string // motivated, moderate, low
	Deadline    string
	HoursPerDay float64
	Days        []string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Goal) == "" {
		return ErrMissingGoal
	}
	if strings.TrimSpace(r.Mood) == "" {
		return ErrMissingMood
	}
	return nil
}

var defaultDays = []string{"Monday", "Wednesday", "Friday"}

func (r Request) days() []string {
	if len(r.Days) == 0 {
		return defaultDays
	}
	return r.Days
}

func (r Request) hours() float64 {
	if r.HoursPerDay > 0 {
		return r.HoursPerDay
	}
	return float64(BaseHours(Intensity(r.Mood)))
}

// Intensity maps a mood to a task intensity.
func Intensity(mood string) string {
	switch strings.ToLower(mood) {
	case "motivated":
		return "high"
	case "low":
		return "light"
	}
	return "medium"
}

// BaseHours is the default number of study hours per day for an intensity.
func BaseHours(intensity string) int {
	switch intensity {
	case "high":
		return 3
	case "light":
		return 1
	}
	return 2
}

// NextMonday returns the date of the next Monday, or today if it is Monday.
func NextMonday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// BuildPrompt renders the text-generation prompt for r starting at start.
func BuildPrompt(r Request, start time.Time) string {
	intensity := Intensity(r.Mood)
	deadline := r.Deadline
	if deadline == "" {
		deadline = "Flexible"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed 8-week study plan for: %q\n\n", r.Goal)
	b.WriteString("Student details:\n")
	fmt.Fprintf(&b, "- Motivation level: %s\n", r.Mood)
	fmt.Fprintf(&b, "- Task intensity: %s\n", intensity)
	fmt.Fprintf(&b, "- Hours per day: %s\n", formatHours(r.hours()))
	fmt.Fprintf(&b, "- Preferred days: %s\n", strings.Join(r.days(), ", "))
	fmt.Fprintf(&b, "- Deadline: %s\n", deadline)
	fmt.Fprintf(&b, "- Start date: %s\n\n", start.Format("2006-01-02"))
	b.WriteString(`For each week provide a title and main focus, the topics to cover and
specific daily tasks with realistic dates. Adjust complexity to the intensity:
- high: 3-4 tasks per day, advanced topics, longer sessions
- medium: 2-3 tasks per day, balanced approach
- light: 1-2 tasks per day, gentle learning curve

Return ONLY a valid JSON object with this structure:
{"goal": "...", "mood": "...", "weeks": [{"week": 1, "title": "...", "topics": ["..."],
"duration": "X hours", "days": ["Monday"], "dailyTasks": [{"date": "YYYY-MM-DD",
"tasks": ["..."], "duration": "N hours", "intensity": "medium"}]}]}
`)
	return b.String()
}

// ExtractPlan decodes the outermost JSON object found in text.
func ExtractPlan(text string) (*Plan, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	var plan Plan
	if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(plan.Weeks) == 0 {
		return nil, errors.New("decode plan: no weeks")
	}
	return &plan, nil
}

var fallbackWeeks = []struct {
	title  string
	topics []string
}{
	{"Foundation & Setup", []string{"Environment Setup", "Basic Concepts", "Getting Started"}},
	{"Building Core Skills", []string{"Core Techniques", "Key Structures", "Problem Solving"}},
	{"Deepening Understanding", []string{"Intermediate Concepts", "Common Patterns", "Practice Sets"}},
	{"Applied Practice", []string{"Worked Examples", "Mini Project", "Review"}},
	{"Advanced Topics", []string{"Advanced Concepts", "Edge Cases", "Case Studies"}},
	{"Integration", []string{"Combining Skills", "Larger Project", "Peer Review"}},
	{"Consolidation", []string{"Revision", "Weak Spots", "Mock Assessment"}},
	{"Final Review", []string{"Full Review", "Final Project", "Reflection"}},
}

var taskTemplates = []string{
	"Study %s",
	"Practice exercises on %s",
	"Summarize notes on %s",
	"Self-test on %s",
}

// Fallback builds a deterministic 8-week plan without text generation.
func Fallback(r Request, start time.Time) *Plan {
	intensity := Intensity(r.Mood)
	perDay := map[string]int{"high": 4, "medium": 3, "light": 2}[intensity]
	hours := formatHours(r.hours())
	days := r.days()

	plan := &Plan{Goal: r.Goal, Mood: r.Mood, Fallback: true}
	for i, fw := range fallbackWeeks {
		weekStart := start.AddDate(0, 0, 7*i)
		week := Week{
			Week:     i + 1,
			Title:    fw.title,
			Topics:   fw.topics,
			Duration: fmt.Sprintf("%s hours", formatHours(r.hours()*float64(len(days)))),
			Days:     days,
		}
		for j, day := range days {
			offset, ok := weekdayOffset(day)
			if !ok {
				continue
			}
			topic := fw.topics[j%len(fw.topics)]
			tasks := make([]string, 0, perDay)
			for k := 0; k < perDay; k++ {
				tasks = append(tasks, fmt.Sprintf(taskTemplates[k%len(taskTemplates)], topic))
			}
			week.DailyTasks = append(week.DailyTasks, DailyTask{
				Date:      weekStart.AddDate(0, 0, offset).Format("2006-01-02"),
				Tasks:     tasks,
				Duration:  hours + " hours",
				Intensity: intensity,
			})
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	return plan
}

// weekdayOffset is the number of days from Monday to the named day.
func weekdayOffset(name string) (int, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return (int(d) + 6) % 7, true
		}
	}
	return 0, false
}

func formatHours(h float64) string {
	if h == float64(int(h)) {
		return fmt.Sprintf("%d", int(h))
	}
	return fmt.Sprintf("%.1f", h)
}
