package tpt

import (
	"strconv"
	"strings"
)

// unnamedPrefix marks placeholder labels for header cells that were blank
// in the source sheet. Spreadsheet exports frequently carry such columns
// around merged cells and decorative banners.
const unnamedPrefix = "Unnamed:"

// Table is a generic grid loaded from a spreadsheet: an ordered list of
// column labels plus data rows. Cells are kept as raw strings; numeric
// coercion happens later in the sanitizer. A Table is never mutated after
// it is built.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the cell at (row, col), or "" when the source row was
// shorter than the header.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// isUnnamed reports whether a column label is a blank-header placeholder.
func isUnnamed(label string) bool {
	s := strings.TrimSpace(label)
	return s == "" || strings.HasPrefix(strings.ToLower(s), "unnamed")
}

// placeholderFor builds the label used for a blank header cell.
func placeholderFor(idx int) string {
	return unnamedPrefix + " " + strconv.Itoa(idx)
}

// newTable builds a Table from a header slice and data rows, replacing
// blank header cells with unnamed placeholders.
func newTable(header []string, rows [][]string) *Table {
	cols := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			cols[i] = placeholderFor(i)
		} else {
			cols[i] = h
		}
	}
	return &Table{Columns: cols, Rows: rows}
}
