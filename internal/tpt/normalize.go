package tpt

import (
	"regexp"
	"strings"
)

// CanonicalField is one of the five normalized semantic columns every
// heterogeneous input sheet is mapped onto.
type CanonicalField string

const (
	FieldTickets        CanonicalField = "Tickets"
	FieldPlays          CanonicalField = "Plays"
	FieldTicketsPerPlay CanonicalField = "TicketsPerPlay"
	FieldGameName       CanonicalField = "GameName"
	FieldProfile        CanonicalField = "Profile"
)

// ProfileFallback is the value synthesized for every row when no column
// resolves to Profile. Its absence is expected, not an error.
const ProfileFallback = "N/A"

// userMapKeys translates the semantic keys of a caller-supplied column
// map (the column-preview flow) onto canonical fields.
var userMapKeys = map[string]CanonicalField{
	"tickets": FieldTickets,
	"plays":   FieldPlays,
	"tpt":     FieldTicketsPerPlay,
	"game":    FieldGameName,
	"profile": FieldProfile,
}

// columnAliases maps exact (cleaned) header names to canonical fields.
// When multiple vendor spellings mean the same thing, they all map here.
var columnAliases = map[string]CanonicalField{
	// Tickets dispensed
	"TICKETS":           FieldTickets,
	"Tickets":           FieldTickets,
	"TOTAL TICKETS":     FieldTickets,
	"Total Tickets":     FieldTickets,
	"Tickets Dispensed": FieldTickets,

	// Plays
	"Plays":       FieldPlays,
	"Total Plays": FieldPlays,

	// Per-play ratio
	"TPT":              FieldTicketsPerPlay,
	"TPP":              FieldTicketsPerPlay,
	"Tickets Per Play": FieldTicketsPerPlay,
	"Tix/Play":         FieldTicketsPerPlay,

	// Machine name
	"Game":          FieldGameName,
	"Machine Name":  FieldGameName,
	"Machine Title": FieldGameName,
	"Title":         FieldGameName,

	// Payout profile
	"Profile": FieldProfile,
}

// heuristicRule is a substring predicate over the squashed form of a
// header label (lowercased, non-alphanumerics stripped). Rules are
// evaluated in order; the first hit wins.
type heuristicRule struct {
	field CanonicalField
	match func(squashed string) bool
}

var heuristicRules = []heuristicRule{
	{FieldGameName, func(s string) bool {
		return strings.Contains(s, "game") || strings.Contains(s, "machinename") ||
			strings.Contains(s, "machinetitle") || strings.Contains(s, "title")
	}},
	{FieldPlays, func(s string) bool {
		return strings.Contains(s, "play")
	}},
	{FieldTickets, func(s string) bool {
		return strings.Contains(s, "ticket") && !strings.Contains(s, "per") &&
			!strings.Contains(s, "tpt") && !strings.Contains(s, "tpp")
	}},
	{FieldTicketsPerPlay, func(s string) bool {
		return strings.Contains(s, "tpt") || strings.Contains(s, "tpp") ||
			strings.Contains(s, "ticketsperplay") || strings.Contains(s, "tixplay")
	}},
	{FieldProfile, func(s string) bool {
		return strings.Contains(s, "profile")
	}},
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func squashLabel(label string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(label), "")
}

// cleanLabel trims a header label and collapses embedded newlines,
// carriage returns, and double spaces to single spaces.
func cleanLabel(label string) string {
	s := strings.ReplaceAll(label, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// ColumnMapping is the resolved assignment of table columns to canonical
// fields. Each field binds to at most one column, and the first column to
// resolve a field keeps it.
type ColumnMapping struct {
	Columns []string               // cleaned header labels, post-drop
	Fields  map[CanonicalField]int // canonical field -> column index
}

// Col returns the column index bound to field, or -1.
func (m *ColumnMapping) Col(field CanonicalField) int {
	if idx, ok := m.Fields[field]; ok {
		return idx
	}
	return -1
}

// Has reports whether field resolved to a column.
func (m *ColumnMapping) Has(field CanonicalField) bool {
	_, ok := m.Fields[field]
	return ok
}

// Normalize resolves the table's raw column labels onto canonical fields.
// Resolution order per column: explicit user mapping (exact raw-label
// match), exact alias lookup, then substring heuristics. Fully-blank
// unnamed columns are dropped before any resolution. The input table is
// not mutated; the returned table shares cell data but carries the
// cleaned, reduced column set aligned with the mapping.
func Normalize(table *Table, userMap map[string]string) (*Table, *ColumnMapping) {
	// Bind user-forced columns first. The preview flow echoes cleaned
	// labels, so a forced binding matches either the raw label or its
	// cleaned form.
	forced := make(map[int]CanonicalField) // source column index -> field
	for key, want := range userMap {
		field, ok := userMapKeys[strings.ToLower(key)]
		if !ok || want == "" {
			continue
		}
		for i, col := range table.Columns {
			if col == want || cleanLabel(col) == want {
				forced[i] = field
				break
			}
		}
	}

	keep := make([]int, 0, len(table.Columns))
	for i, col := range table.Columns {
		if isUnnamed(col) && columnAllBlank(table, i) {
			continue
		}
		keep = append(keep, i)
	}

	mapping := &ColumnMapping{
		Columns: make([]string, 0, len(keep)),
		Fields:  make(map[CanonicalField]int),
	}
	rows := make([][]string, len(table.Rows))
	for i := range rows {
		rows[i] = make([]string, 0, len(keep))
	}

	for outIdx, srcIdx := range keep {
		label := cleanLabel(table.Columns[srcIdx])
		mapping.Columns = append(mapping.Columns, label)
		for i := range rows {
			rows[i] = append(rows[i], table.Cell(i, srcIdx))
		}

		field, ok := resolveColumn(srcIdx, label, forced)
		if !ok {
			continue
		}
		if _, taken := mapping.Fields[field]; taken {
			continue // first column wins
		}
		mapping.Fields[field] = outIdx
	}

	return &Table{Columns: mapping.Columns, Rows: rows}, mapping
}

func resolveColumn(srcIdx int, cleaned string, forced map[int]CanonicalField) (CanonicalField, bool) {
	if field, ok := forced[srcIdx]; ok {
		return field, true
	}
	if field, ok := columnAliases[cleaned]; ok {
		return field, true
	}
	squashed := squashLabel(cleaned)
	for _, rule := range heuristicRules {
		if rule.match(squashed) {
			return rule.field, true
		}
	}
	return "", false
}

func columnAllBlank(table *Table, col int) bool {
	for i := range table.Rows {
		if strings.TrimSpace(table.Cell(i, col)) != "" {
			return false
		}
	}
	return true
}
