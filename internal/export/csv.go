package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyfocus/internal/store"
)

// ToCSV writes focus phases to path, one row per phase.
func ToCSV(phases []store.FocusPhase, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ID", "Run", "Kind", "Completed", "Planned (s)", "Actual (s)", "Actual", "Cycle", "Skipped"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range phases {
		row := []string{
			fmt.Sprintf("%d", p.ID),
			p.RunID,
			p.Kind,
			p.CompletedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", p.PlannedSeconds),
			fmt.Sprintf("%d", p.ActualSeconds),
			formatDuration(p.ActualSeconds),
			fmt.Sprintf("%d", p.Cycle),
			fmt.Sprintf("%t", p.Skipped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
