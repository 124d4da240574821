package tpt

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File types accepted by the reader.
const (
	FileTypeCSV   = "csv"
	FileTypeExcel = "excel"
)

const previewRows = 25

// Reader loads a CSV or Excel file into a Table. The two heuristic knobs
// were tuned empirically against real vendor exports; they are fields
// rather than constants so odd sheets can be accommodated without a code
// change.
type Reader struct {
	// HeaderScoreMin is the number of distinct keyword buckets a preview
	// row must hit before it is accepted as the header row.
	HeaderScoreMin int

	// UnnamedRetryRatio is the fraction of unnamed columns above which a
	// two-row header parse is attempted.
	UnnamedRetryRatio float64
}

// NewReader returns a Reader with the default detection thresholds.
func NewReader() *Reader {
	return &Reader{HeaderScoreMin: 2, UnnamedRetryRatio: 0.30}
}

// Read loads the file at path as the given type. For Excel files the
// header row is auto-detected unless forcedHeaderRow pins it. The second
// return value is the 0-based header row actually used, or nil for CSV
// input where the first line is the header by definition.
func (r *Reader) Read(path, fileType string, forcedHeaderRow *int) (*Table, *int, error) {
	switch fileType {
	case FileTypeCSV:
		t, err := readCSV(path)
		return t, nil, err
	case FileTypeExcel:
		return r.readExcel(path, forcedHeaderRow)
	default:
		return nil, nil, ErrUnsupportedFileType
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // vendor exports are frequently ragged
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return newTable(nil, nil), nil
	}
	return newTable(records[0], records[1:]), nil
}

func (r *Reader) readExcel(path string, forcedHeaderRow *int) (*Table, *int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, ErrFileNotFound
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerRow := 0
	if forcedHeaderRow != nil {
		headerRow = *forcedHeaderRow
	} else {
		headerRow = r.detectHeaderRow(rows)
	}
	if headerRow >= len(rows) {
		return newTable(nil, nil), &headerRow, nil
	}

	// GetRows trims trailing blank cells, so a merged banner row can come
	// back narrower than the data beneath it. Size the table from the
	// widest row so short headers grow unnamed placeholders instead of
	// truncating every data row.
	width := tableWidth(rows[headerRow:])

	table := singleHeaderTable(rows, headerRow, width)

	// A header row full of blanks usually means the real labels are split
	// across two rows (merged cells). Retry with a two-row header and
	// flatten the pair, preferring the second-level label.
	if unnamedRatio(table.Columns) > r.UnnamedRetryRatio && headerRow+1 < len(rows) {
		table = twoRowHeaderTable(rows, headerRow, width)
	}

	return table, &headerRow, nil
}

func tableWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// detectHeaderRow previews the sheet and scores each candidate row by the
// number of distinct keyword buckets it hits. Decorative title rows (all
// blank or "unnamed" markers) are skipped outright. Falls back to row 0
// when nothing scores.
func (r *Reader) detectHeaderRow(rows [][]string) int {
	limit := previewRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if decorativeRow(rows[i]) {
			continue
		}
		if headerScore(rows[i]) >= r.HeaderScoreMin {
			return i
		}
	}
	return 0
}

func decorativeRow(cells []string) bool {
	for _, c := range cells {
		s := strings.TrimSpace(c)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(s), "unnamed") {
			return false
		}
	}
	return true
}

// headerScore counts how many independent keyword buckets a row matches:
// game/machine/title, play, ticket, and the per-play ratio spellings.
func headerScore(cells []string) int {
	joined := strings.ToLower(strings.Join(cells, "|"))
	score := 0
	if strings.Contains(joined, "game") || strings.Contains(joined, "machine") || strings.Contains(joined, "title") {
		score++
	}
	if strings.Contains(joined, "play") {
		score++
	}
	if strings.Contains(joined, "ticket") {
		score++
	}
	if strings.Contains(joined, "tpt") || strings.Contains(joined, "tpp") ||
		strings.Contains(joined, "tickets per play") || strings.Contains(joined, "tix/play") {
		score++
	}
	return score
}

func unnamedRatio(columns []string) float64 {
	if len(columns) == 0 {
		return 0
	}
	unnamed := 0
	for _, c := range columns {
		if isUnnamed(c) {
			unnamed++
		}
	}
	return float64(unnamed) / float64(len(columns))
}

func singleHeaderTable(rows [][]string, headerRow, width int) *Table {
	header := make([]string, width)
	copy(header, rows[headerRow])
	return newTable(header, padRows(rows[headerRow+1:], width))
}

// twoRowHeaderTable flattens a split header: for each column the label on
// the second row wins unless it is blank or an unnamed placeholder, in
// which case the first-row label is used.
func twoRowHeaderTable(rows [][]string, headerRow, width int) *Table {
	top := rows[headerRow]
	bottom := rows[headerRow+1]

	header := make([]string, width)
	for j := 0; j < width; j++ {
		a := cellAt(top, j)
		b := cellAt(bottom, j)
		if strings.TrimSpace(b) != "" && !isUnnamed(b) {
			header[j] = strings.TrimSpace(b)
		} else {
			header[j] = strings.TrimSpace(a)
		}
	}
	return newTable(header, padRows(rows[headerRow+2:], width))
}

func cellAt(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}

// padRows right-pads every row to width so downstream indexing is safe.
func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) >= width {
			out[i] = row[:width]
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
