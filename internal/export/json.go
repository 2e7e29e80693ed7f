package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyfocus/internal/store"
)

type jsonExport struct {
	ExportedAt   string      `json:"exported_at"`
	Count        int         `json:"count"`
	FocusSeconds int64       `json:"focus_seconds"`
	Phases       []jsonPhase `json:"phases"`
}

type jsonPhase struct {
	ID          int64  `json:"id"`
	RunID       string `json:"run_id"`
	Kind        string `json:"kind"`
	CompletedAt string `json:"completed_at"`
	PlannedSec  int64  `json:"planned_seconds"`
	ActualSec   int64  `json:"actual_seconds"`
	Actual      string `json:"actual"`
	Cycle       int    `json:"cycle"`
	Skipped     bool   `json:"skipped,omitempty"`
}

// ToJSON writes focus phases to path as an indented document.
func ToJSON(phases []store.FocusPhase, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(phases),
	}

	for _, p := range phases {
		if p.Kind == store.KindStudy || p.Kind == store.KindCustom {
			export.FocusSeconds += p.ActualSeconds
		}
		export.Phases = append(export.Phases, jsonPhase{
			ID:          p.ID,
			RunID:       p.RunID,
			Kind:        p.Kind,
			CompletedAt: p.CompletedAt.Local().Format(time.RFC3339),
			PlannedSec:  p.PlannedSeconds,
			ActualSec:   p.ActualSeconds,
			Actual:      formatDuration(p.ActualSeconds),
			Cycle:       p.Cycle,
			Skipped:     p.Skipped,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
