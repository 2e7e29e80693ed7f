package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/studyfocus/internal/timer"
)

func (s *Store) RecordPhase(p FocusPhase) (*FocusPhase, error) {
	if p.CompletedAt.IsZero() {
		p.CompletedAt = time.Now()
	}
	skipped := 0
	if p.Skipped {
		skipped = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO focus_phases (run_id, kind, planned_seconds, actual_seconds, cycle, skipped, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Kind, p.PlannedSeconds, p.ActualSeconds, p.Cycle, skipped,
		p.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("record phase: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return &p, nil
}

// PhaseCompleted stores an engine completion. It satisfies timer.Observer.
func (s *Store) PhaseCompleted(c timer.Completion) {
	kind := KindCustom
	if c.Mode == timer.ModePomodoro {
		kind = c.Phase.String()
	}
	_, err := s.RecordPhase(FocusPhase{
		RunID:          c.RunID,
		Kind:           kind,
		PlannedSeconds: int64(c.Planned.Seconds()),
		ActualSeconds:  int64(c.Actual.Seconds()),
		Cycle:          c.Cycle,
		Skipped:        c.Skipped,
		CompletedAt:    c.At,
	})
	if err != nil {
		slog.Error("record focus phase", "run_id", c.RunID, "kind", kind, "error", err)
	}
}

func (s *Store) ListPhases(f PhaseFilter) ([]FocusPhase, error) {
	query := `SELECT id, run_id, kind, planned_seconds, actual_seconds, cycle, skipped, completed_at FROM focus_phases WHERE 1=1`
	var args []any

	if f.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, f.RunID)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.From != nil {
		query += ` AND completed_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND completed_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY completed_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []FocusPhase
	for rows.Next() {
		var p FocusPhase
		var skipped int
		var completedAt string
		if err := rows.Scan(&p.ID, &p.RunID, &p.Kind, &p.PlannedSeconds, &p.ActualSeconds, &p.Cycle, &skipped, &completedAt); err != nil {
			return nil, err
		}
		p.Skipped = skipped == 1
		p.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (s *Store) GetFocusDailySummary(from, to time.Time) ([]FocusDailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(completed_at) AS day,
		       COALESCE(SUM(CASE WHEN kind IN ('study', 'custom') THEN actual_seconds ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind IN ('short_break', 'long_break') THEN actual_seconds ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind = 'study' AND skipped = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(skipped), 0)
		FROM focus_phases
		WHERE completed_at >= ? AND completed_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("focus daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []FocusDailySummary
	for rows.Next() {
		var ds FocusDailySummary
		if err := rows.Scan(&ds.Date, &ds.FocusSeconds, &ds.BreakSeconds, &ds.StudyCount, &ds.SkippedCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// GetTodayFocus returns the focused seconds (study and custom) recorded today (UTC).
func (s *Store) GetTodayFocus() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total int64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(actual_seconds), 0)
		FROM focus_phases
		WHERE date(completed_at) = ? AND kind IN ('study', 'custom')`, today,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("today focus: %w", err)
	}
	return total, nil
}

// GetFocusStats returns the number of fully completed study phases and the
// total focused seconds between from and to.
func (s *Store) GetFocusStats(from, to time.Time) (studies int, focusSeconds int64, err error) {
	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN kind = 'study' AND skipped = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind IN ('study', 'custom') THEN actual_seconds ELSE 0 END), 0)
		FROM focus_phases
		WHERE completed_at >= ? AND completed_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&studies, &focusSeconds)
	return
}
