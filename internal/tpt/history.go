package tpt

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/arcadeworks/arcade-ops/internal/database"
)

// History is the append-only index of generated reports, backing the
// report-history listing and retention pruning. Rows reference the JSON
// snapshot on disk; neither is ever updated in place.
type History struct {
	db *database.DB
}

func NewHistory(db *database.DB) *History {
	return &History{db: db}
}

// Entry is one indexed report.
type Entry struct {
	ID         int64   `json:"id"`
	CreatedAt  string  `json:"created_at"`
	AvgAll     Average `json:"avg_all"`
	BelowCount int     `json:"below_count"`
	AboveCount int     `json:"above_count"`
	JSONPath   string  `json:"json_path"`
}

// Record appends an index row for a freshly generated report.
func (h *History) Record(r *Report, jsonPath string) error {
	var avg interface{}
	if r.TotalTPTAverage.Valid {
		avg = r.TotalTPTAverage.Value
	}
	createdAt := time.Now().UTC().Format("2006-01-02T15:04:05") + "Z"
	_, err := h.db.Exec(h.db.Rebind(
		`INSERT INTO tpt_reports (created_at, avg_all, below_count, above_count, json_path) VALUES (?, ?, ?, ?, ?)`),
		createdAt, avg, r.BelowRangeCount, r.AboveRangeCount, jsonPath)
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

// Recent returns the newest index rows, most recent first.
func (h *History) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.Query(h.db.Rebind(
		`SELECT id, created_at, avg_all, below_count, above_count, json_path FROM tpt_reports ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var avg *float64
		var path *string
		if err := rows.Scan(&e.ID, &e.CreatedAt, &avg, &e.BelowCount, &e.AboveCount, &path); err != nil {
			return nil, err
		}
		if avg != nil {
			e.AvgAll = Average{Valid: true, Value: *avg}
		}
		if path != nil {
			e.JSONPath = *path
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes index rows older than the given number of days along
// with their snapshot files. Unparseable timestamps are left alone, and
// a file that refuses to delete is skipped rather than aborting the
// sweep. Returns the number of index rows removed.
func (h *History) Prune(days int) (int, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := h.db.Query(`SELECT id, created_at, json_path FROM tpt_reports`)
	if err != nil {
		return 0, err
	}

	type stale struct {
		id   int64
		path string
	}
	var old []stale
	for rows.Next() {
		var id int64
		var createdAt string
		var path *string
		if err := rows.Scan(&id, &createdAt, &path); err != nil {
			rows.Close()
			return 0, err
		}
		created, err := time.Parse("2006-01-02T15:04:05", trimZ(createdAt))
		if err != nil {
			continue
		}
		if created.Before(cutoff) {
			s := stale{id: id}
			if path != nil {
				s.path = *path
			}
			old = append(old, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, s := range old {
		if _, err := h.db.Exec(h.db.Rebind(`DELETE FROM tpt_reports WHERE id = ?`), s.id); err != nil {
			return 0, err
		}
	}
	for _, s := range old {
		if s.path == "" {
			continue
		}
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			log.Printf("[tpt] prune: could not remove %s: %v", s.path, err)
		}
	}
	return len(old), nil
}

func trimZ(s string) string {
	if len(s) > 0 && s[len(s)-1] == 'Z' {
		return s[:len(s)-1]
	}
	return s
}
