package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/studyfocus/internal/timer"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// FocusConfig builds the timer configuration from the focus_* settings.
// Missing or malformed values keep the timer defaults.
func (s *Store) FocusConfig() timer.Config {
	cfg := timer.DefaultConfig()
	cfg.Study = s.secondsSetting("focus_study", cfg.Study)
	cfg.ShortBreak = s.secondsSetting("focus_short_break", cfg.ShortBreak)
	cfg.LongBreak = s.secondsSetting("focus_long_break", cfg.LongBreak)
	if v, err := s.GetSetting("focus_cycles"); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CyclesBeforeLongBreak = n
		}
	}
	return cfg
}

func (s *Store) secondsSetting(key string, fallback time.Duration) time.Duration {
	if v, err := s.GetSetting(key); err == nil {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// IntSetting returns an integer setting or fallback.
func (s *Store) IntSetting(key string, fallback int) int {
	if v, err := s.GetSetting(key); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
