// Package logging writes structured JSON logs to a per-day file.
//
// The TUI owns the terminal, so logs never go to stderr while it runs.
// Files are named {service}_{date}.log inside the configured directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config configures a Logger. An empty Dir discards all output.
type Config struct {
	Level   string
	Dir     string
	Service string
}

// Logger embeds *slog.Logger and owns the underlying log file.
type Logger struct {
	*slog.Logger

	mu   sync.Mutex
	file *os.File
	path string
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown
// names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New opens (or creates) today's log file and returns a JSON logger on it.
func New(cfg Config) (*Logger, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Dir == "" {
		return &Logger{Logger: slog.New(slog.NewJSONHandler(io.Discard, opts))}, nil
	}

	service := cfg.Service
	if service == "" {
		service = "studyfocus"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := slog.New(slog.NewJSONHandler(f, opts)).With("service", service)
	return &Logger{Logger: l, file: f, path: path}, nil
}

// Path returns the log file path, or "" when output is discarded.
func (l *Logger) Path() string { return l.path }

// Close flushes and closes the log file. It is safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// DefaultDir returns ~/.config/studyfocus/logs.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "studyfocus", "logs")
}
