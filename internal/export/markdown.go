package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/studyfocus/internal/planner"
	"github.com/sadopc/studyfocus/internal/store"
)

// PlanToMarkdown renders a study plan as a Markdown checklist. Done marks
// come from tasks, matched on date and title.
func PlanToMarkdown(plan *planner.Plan, tasks []store.PlanTask) string {
	done := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.Done {
			done[t.Date+"\x00"+t.Title] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Study Plan: %s\n\n", plan.Goal)
	if plan.Mood != "" {
		fmt.Fprintf(&b, "Mood: %s (intensity %s)\n", plan.Mood, planner.Intensity(plan.Mood))
	}
	if plan.Fallback {
		b.WriteString("Generated offline from the built-in template.\n")
	}

	for _, w := range plan.Weeks {
		fmt.Fprintf(&b, "\n## Week %d: %s\n\n", w.Week, w.Title)
		if len(w.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(w.Topics, ", "))
		}
		if w.Duration != "" {
			fmt.Fprintf(&b, "Total: %s\n", w.Duration)
		}
		for _, day := range w.DailyTasks {
			fmt.Fprintf(&b, "\n### %s", day.Date)
			if day.Duration != "" {
				fmt.Fprintf(&b, " (%s)", day.Duration)
			}
			b.WriteString("\n\n")
			for _, title := range day.Tasks {
				mark := " "
				if done[day.Date+"\x00"+title] {
					mark = "x"
				}
				fmt.Fprintf(&b, "- [%s] %s\n", mark, title)
			}
		}
	}
	return b.String()
}

// ToMarkdown writes PlanToMarkdown output to path.
func ToMarkdown(plan *planner.Plan, tasks []store.PlanTask, path string) error {
	if err := os.WriteFile(path, []byte(PlanToMarkdown(plan, tasks)), 0o644); err != nil {
		return fmt.Errorf("write markdown file: %w", err)
	}
	return nil
}
