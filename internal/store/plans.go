package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/studyfocus/internal/planner"
)

// SavePlan replaces the stored plan of a goal and its task rows.
// It returns the number of task rows written.
func (s *Store) SavePlan(goalID int64, plan *planner.Plan) (int, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return 0, fmt.Errorf("marshal plan: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin save plan: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(`UPDATE goals SET plan_json = ?, updated_at = ? WHERE id = ?`, string(raw), now, goalID)
	if err != nil {
		return 0, fmt.Errorf("update goal plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("save plan: goal %d: %w", goalID, sql.ErrNoRows)
	}

	if _, err := tx.Exec(`DELETE FROM plan_tasks WHERE goal_id = ?`, goalID); err != nil {
		return 0, fmt.Errorf("clear plan tasks: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO plan_tasks (goal_id, week, week_title, date, title, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare plan task insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, w := range plan.Weeks {
		for _, day := range w.DailyTasks {
			for _, title := range day.Tasks {
				if _, err := stmt.Exec(goalID, w.Week, w.Title, day.Date, title, day.Duration, now); err != nil {
					return 0, fmt.Errorf("insert plan task: %w", err)
				}
				count++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit plan: %w", err)
	}
	return count, nil
}

// LoadPlan returns the stored plan of a goal, or nil if none was generated.
func (s *Store) LoadPlan(goalID int64) (*planner.Plan, error) {
	var raw string
	err := s.db.QueryRow(`SELECT plan_json FROM goals WHERE id = ?`, goalID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load plan %d: %w", goalID, err)
	}
	if raw == "" {
		return nil, nil
	}
	var plan planner.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decode plan %d: %w", goalID, err)
	}
	return &plan, nil
}

const planTaskColumns = `t.id, t.goal_id, t.week, t.week_title, t.date, t.title, t.duration, t.done, t.created_at, g.name`

func (s *Store) queryPlanTasks(where string, args ...any) ([]PlanTask, error) {
	rows, err := s.db.Query(
		`SELECT `+planTaskColumns+` FROM plan_tasks t JOIN goals g ON g.id = t.goal_id WHERE `+where+
			` ORDER BY t.date, t.id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list plan tasks: %w", err)
	}
	defer rows.Close()

	var tasks []PlanTask
	for rows.Next() {
		var t PlanTask
		var done int
		var createdAt string
		if err := rows.Scan(&t.ID, &t.GoalID, &t.Week, &t.WeekTitle, &t.Date, &t.Title, &t.Duration, &done, &createdAt, &t.GoalName); err != nil {
			return nil, err
		}
		t.Done = done == 1
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) ListPlanTasks(goalID int64) ([]PlanTask, error) {
	return s.queryPlanTasks(`t.goal_id = ?`, goalID)
}

// TasksForDate lists plan tasks of active goals scheduled on date (YYYY-MM-DD).
func (s *Store) TasksForDate(date string) ([]PlanTask, error) {
	return s.queryPlanTasks(`t.date = ? AND g.archived = 0`, date)
}

func (s *Store) SetTaskDone(id int64, done bool) error {
	v := 0
	if done {
		v = 1
	}
	res, err := s.db.Exec(`UPDATE plan_tasks SET done = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("set task done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set task done %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// PlanProgress returns done and total task counts for a goal.
func (s *Store) PlanProgress(goalID int64) (done, total int, err error) {
	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(done), 0), COUNT(*) FROM plan_tasks WHERE goal_id = ?`, goalID,
	).Scan(&done, &total)
	return
}
