package resection

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ritzau/resection-analyzer/pkg/logging"
)

// Suffix names a dilation radius in report filenames: "dilate_N", "erode_N"
// (N is the absolute radius) or "0".
//
// Erosion radii are written unsigned. Reports named "erode_-N" by older
// tooling are not picked up and get recomputed under the new name.
func Suffix(dilate int) string {
	switch {
	case dilate > 0:
		return fmt.Sprintf("dilate_%d", dilate)
	case dilate < 0:
		return fmt.Sprintf("erode_%d", -dilate)
	default:
		return "0"
	}
}

// ReportPath returns <dir>/<patient>/aim1/<patient>_resected_electrodes_<suffix>.csv
func ReportPath(dir, patientID string, dilate int) string {
	name := fmt.Sprintf("%s_resected_electrodes_%s.csv", patientID, Suffix(dilate))
	return filepath.Join(dir, patientID, "aim1", name)
}

// Outcome reports what a ReportWriter did
type Outcome int

const (
	Written Outcome = iota
	Skipped         // The report already existed
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "written"
}

// Producer computes the rows of a report on demand
type Producer func(ctx context.Context) ([]Electrode, error)

// ReportWriter persists classification results as CSV files. Existing
// reports are never recomputed or overwritten.
type ReportWriter struct {
	Dir string
}

// Write stores the classification for (patientID, dilate) unless its report
// already exists. produce is only called when a report is written.
func (w *ReportWriter) Write(ctx context.Context, patientID string, dilate int, produce Producer) (string, Outcome, error) {
	path := ReportPath(w.Dir, patientID, dilate)

	if _, err := os.Stat(path); err == nil {
		logging.DebugContext(ctx, "report exists, skipping", "path", path)
		return path, Skipped, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", Written, fmt.Errorf("checking %s: %w", path, err)
	}

	rows, err := produce(ctx)
	if err != nil {
		return "", Written, err
	}

	if err := writeCSV(path, rows); err != nil {
		return "", Written, err
	}
	logging.InfoContext(ctx, "report written", "path", path, "rows", len(rows))
	return path, Written, nil
}

// Invalidate removes the report for (patientID, dilate) so the next Write
// recomputes it. A missing report is not an error.
func (w *ReportWriter) Invalidate(patientID string, dilate int) error {
	path := ReportPath(w.Dir, patientID, dilate)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidating %s: %w", path, err)
	}
	return nil
}

// writeCSV writes rows to a temp file and renames it into place so readers
// never observe a partial report
func writeCSV(path string, rows []Electrode) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.csv")
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	for _, row := range rows {
		if err := cw.Write([]string{row.ID, row.Label}); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by ReportWriter
func ReadReport(path string) ([]Electrode, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make([]Electrode, len(records))
	for i, rec := range records {
		out[i] = Electrode{ID: rec[0], Label: rec[1]}
	}
	return out, nil
}
