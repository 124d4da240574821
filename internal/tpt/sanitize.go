package tpt

import (
	"math"
	"strconv"
	"strings"
)

// Row is one machine's cleaned record. Tickets and Plays are always
// present (rows without them are dropped); TicketsPerPlay stays nil when
// the sheet had no usable value, and is synthesized later by the metrics
// engine. GameName is nil only when the sheet had no game-name column at
// all.
type Row struct {
	Tickets        float64
	Plays          float64
	TicketsPerPlay *float64
	GameName       *string
	Profile        string
}

// Sanitize coerces the canonical numeric columns and drops rows missing
// the essentials. Requiring Tickets and Plays is a hard precondition;
// TicketsPerPlay may be absent (it can be derived). Returns
// ErrEmptyAfterCleaning when nothing survives.
func Sanitize(table *Table, mapping *ColumnMapping) ([]Row, error) {
	var missing []CanonicalField
	for _, f := range []CanonicalField{FieldTickets, FieldPlays} {
		if !mapping.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Available: mapping.Columns}
	}

	ticketsCol := mapping.Col(FieldTickets)
	playsCol := mapping.Col(FieldPlays)
	tptCol := mapping.Col(FieldTicketsPerPlay)
	gameCol := mapping.Col(FieldGameName)
	profileCol := mapping.Col(FieldProfile)

	rows := make([]Row, 0, len(table.Rows))
	for i := range table.Rows {
		tickets := parseNumber(table.Cell(i, ticketsCol))
		plays := parseNumber(table.Cell(i, playsCol))
		if tickets == nil || plays == nil {
			continue
		}

		row := Row{Tickets: *tickets, Plays: *plays, Profile: ProfileFallback}
		if tptCol >= 0 {
			row.TicketsPerPlay = parseNumber(table.Cell(i, tptCol))
		}
		if gameCol >= 0 {
			name := strings.TrimSpace(table.Cell(i, gameCol))
			row.GameName = &name
		}
		if profileCol >= 0 {
			if p := strings.TrimSpace(table.Cell(i, profileCol)); p != "" {
				row.Profile = p
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyAfterCleaning
	}
	return rows, nil
}

// parseNumber coerces a cell to a float. Non-parseable values and
// non-finite results (infinities, NaN) come back as nil, never as an
// error: bad cells just make the row ineligible.
func parseNumber(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
