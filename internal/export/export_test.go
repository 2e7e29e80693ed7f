package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/studyfocus/internal/planner"
	"github.com/sadopc/studyfocus/internal/store"
)

func sampleData() []store.FocusPhase {
	now := time.Now().UTC()
	return []store.FocusPhase{
		{
			ID:             1,
			RunID:          "run-a",
			Kind:           store.KindStudy,
			PlannedSeconds: 1500,
			ActualSeconds:  1500,
			Cycle:          1,
			CompletedAt:    now.Add(-1 * time.Hour),
		},
		{
			ID:             2,
			RunID:          "run-a",
			Kind:           store.KindShortBreak,
			PlannedSeconds: 300,
			ActualSeconds:  120,
			Cycle:          1,
			Skipped:        true,
			CompletedAt:    now.Add(-30 * time.Minute),
		},
		{
			ID:             3,
			RunID:          "run-b",
			Kind:           store.KindCustom,
			PlannedSeconds: 3600,
			ActualSeconds:  3600,
			CompletedAt:    now,
		},
	}
}

func samplePlan() *planner.Plan {
	return &planner.Plan{
		Goal:     "Linear Algebra",
		Mood:     "low",
		Fallback: true,
		Weeks: []planner.Week{{
			Week:     1,
			Title:    "Vectors",
			Topics:   []string{"vectors", "dot product"},
			Duration: "3 hours",
			DailyTasks: []planner.DailyTask{
				{Date: "2026-10-26", Tasks: []string{"read ch. 1", "exercises 1-10"}, Duration: "1 hours"},
				{Date: "2026-10-28", Tasks: []string{"read ch. 2"}},
			},
		}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Run", "Kind", "Completed", "Planned (s)", "Actual (s)", "Actual", "Cycle", "Skipped"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "run-a" || row[2] != "study" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[5] != "1500" || row[6] != "00:25:00" {
		t.Fatalf("actual = %q / %q, want 1500 / 00:25:00", row[5], row[6])
	}
	if row[8] != "false" {
		t.Fatalf("skipped = %q, want false", row[8])
	}
	if records[2][8] != "true" {
		t.Fatalf("skipped break should be true, got %q", records[2][8])
	}
	if _, err := time.Parse(time.RFC3339, row[3]); err != nil {
		t.Fatalf("completed is not RFC3339: %q", row[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Phases) != 3 {
		t.Fatalf("count = %d, phases = %d, want 3", result.Count, len(result.Phases))
	}
	if result.FocusSeconds != 5100 {
		t.Fatalf("focus_seconds = %d, want 5100", result.FocusSeconds)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	p := result.Phases[1]
	if p.Kind != "short_break" || !p.Skipped || p.ActualSec != 120 || p.Actual != "00:02:00" {
		t.Fatalf("unexpected phase: %+v", p)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Phases != nil {
		t.Fatal("phases should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

// ============================================================
// Markdown
// ============================================================

func TestPlanToMarkdown(t *testing.T) {
	tasks := []store.PlanTask{
		{Date: "2026-10-26", Title: "read ch. 1", Done: true},
		{Date: "2026-10-26", Title: "exercises 1-10"},
		{Date: "2026-10-28", Title: "read ch. 1", Done: false},
	}

	md := PlanToMarkdown(samplePlan(), tasks)

	for _, want := range []string{
		"# Study Plan: Linear Algebra",
		"Mood: low (intensity light)",
		"built-in template",
		"## Week 1: Vectors",
		"Topics: vectors, dot product",
		"Total: 3 hours",
		"### 2026-10-26 (1 hours)",
		"- [x] read ch. 1",
		"- [ ] exercises 1-10",
		"### 2026-10-28\n",
		"- [ ] read ch. 2",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestToMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	if err := ToMarkdown(samplePlan(), nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Study Plan: Linear Algebra") {
		t.Fatalf("unexpected file content: %q", data)
	}
	if strings.Contains(string(data), "[x]") {
		t.Fatal("no task should be marked done without task rows")
	}
}

func TestToMarkdownBadPath(t *testing.T) {
	if err := ToMarkdown(samplePlan(), nil, "/nonexistent/dir/plan.md"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
