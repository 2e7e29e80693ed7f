package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

func (s *Store) CreateGoal(g Goal) (*Goal, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO goals (name, mood, intensity, hours_per_day, days, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.Mood, g.Intensity, g.HoursPerDay, strings.Join(g.Days, ","), g.Deadline, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetGoal(id)
}

const goalColumns = `id, name, mood, intensity, hours_per_day, days, deadline, archived, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*Goal, error) {
	g := &Goal{}
	var days, createdAt, updatedAt string
	var archived int
	if err := row.Scan(&g.ID, &g.Name, &g.Mood, &g.Intensity, &g.HoursPerDay, &days, &g.Deadline, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if days != "" {
		g.Days = strings.Split(days, ",")
	}
	g.Archived = archived == 1
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return g, nil
}

func (s *Store) GetGoal(id int64) (*Goal, error) {
	g, err := scanGoal(s.db.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

// FindGoal returns the goal with the given name, or nil if none exists.
func (s *Store) FindGoal(name string) (*Goal, error) {
	g, err := scanGoal(s.db.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find goal %q: %w", name, err)
	}
	return g, nil
}

func (s *Store) ListGoals(includeArchived bool) ([]Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(g Goal) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE goals SET name = ?, mood = ?, intensity = ?, hours_per_day = ?, days = ?, deadline = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, g.Mood, g.Intensity, g.HoursPerDay, strings.Join(g.Days, ","), g.Deadline, now, g.ID,
	)
	return err
}

func (s *Store) ArchiveGoal(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE goals SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}
