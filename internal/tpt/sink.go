package tpt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink persists an immutable snapshot of a report and returns where it
// landed. The pipeline treats every sink as best-effort: a failing Store
// never fails the calculation.
type Sink interface {
	Store(r *Report) (string, error)
}

// snapshotName builds the timestamp-qualified snapshot filename.
// Second-precision UTC stamps keep concurrent requests from colliding in
// practice; colons are avoided for filesystem portability.
func snapshotName(now time.Time) string {
	return fmt.Sprintf("tpt_report_%s.json", now.UTC().Format("2006-01-02T15-04-05"))
}

// FileSink writes report snapshots as indented JSON under a reports
// directory, creating it on demand.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Store(r *Report) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(s.Dir, snapshotName(time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
