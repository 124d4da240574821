package tpt

import (
	"math"
)

// DefaultExclusionGroup lists the machines conventionally excluded from
// the headline average because their payout behavior is atypical.
// Extendable through configuration.
var DefaultExclusionGroup = []string{"BIRTHDAY BLASTER P1"}

// Average is an explicit optional ratio. An invalid Average marshals as
// the string "N/A" so the UI can render it directly; this replaces the
// ambiguous number-or-string sentinel the report format historically
// used.
type Average struct {
	Valid bool
	Value float64
}

// MarshalJSON renders the value as a number, or "N/A" when unavailable.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`"N/A"`), nil
	}
	return jsonNumber(a.Value), nil
}

// ratioOfSums computes sum(tickets)/sum(plays) rounded to 2 decimals.
// A zero or non-finite denominator yields an unavailable Average; a
// degenerate ratio is a definitional gap, not a failure.
func ratioOfSums(rows []Row) Average {
	var tickets, plays float64
	for _, r := range rows {
		tickets += r.Tickets
		plays += r.Plays
	}
	if plays <= 0 || math.IsInf(plays, 0) || math.IsNaN(plays) {
		return Average{}
	}
	v := tickets / plays
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Average{}
	}
	return Average{Valid: true, Value: round2(v)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EffectiveTPT resolves a row's per-play ratio: an input-provided value
// always wins over a recomputed one; otherwise tickets/plays is
// synthesized, with Plays == 0 treated as undefined rather than
// infinite. Returns nil when no value can be derived.
func EffectiveTPT(r Row) *float64 {
	if r.TicketsPerPlay != nil {
		return r.TicketsPerPlay
	}
	if r.Plays == 0 {
		return nil
	}
	v := r.Tickets / r.Plays
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Metrics is the computed bundle handed to the report assembler. The
// below/above slices hold indices into the input rows, in table order.
type Metrics struct {
	OverallAverage  Average
	GroupAverage    Average // exclusion-group machines only
	NonGroupAverage Average
	Below           []int
	Above           []int
	HasGameColumn   bool
	IncludedGroup   bool
}

// Compute derives every aggregate from the sanitized rows. It never
// fails: numeric degeneracies degrade to unavailable averages and rows
// lacking a resolvable ratio or a game name are simply left out of the
// range classification.
func Compute(rows []Row, low, high float64, includeGroup bool, groupNames []string) Metrics {
	hasGame := len(rows) > 0 && rows[0].GameName != nil
	inGroup := groupMembership(rows, groupNames)

	m := Metrics{HasGameColumn: hasGame, IncludedGroup: includeGroup}

	// Headline average. The exclusion toggle is meaningless without game
	// names to exclude by, so the full set is used in that case too.
	if includeGroup || !hasGame {
		m.OverallAverage = ratioOfSums(rows)
	} else {
		m.OverallAverage = ratioOfSums(filterRows(rows, inGroup, false))
	}

	// Group-only and non-group averages are always reported
	// independently of the toggle.
	if hasGame {
		m.GroupAverage = ratioOfSums(filterRows(rows, inGroup, true))
		m.NonGroupAverage = ratioOfSums(filterRows(rows, inGroup, false))
	}

	for i, r := range rows {
		tpt := EffectiveTPT(r)
		if tpt == nil || r.GameName == nil {
			continue
		}
		switch {
		case *tpt < low:
			m.Below = append(m.Below, i)
		case *tpt > high:
			m.Above = append(m.Above, i)
		}
	}

	return m
}

func groupMembership(rows []Row, groupNames []string) []bool {
	names := make(map[string]bool, len(groupNames))
	for _, n := range groupNames {
		names[n] = true
	}
	in := make([]bool, len(rows))
	for i, r := range rows {
		in[i] = r.GameName != nil && names[*r.GameName]
	}
	return in
}

func filterRows(rows []Row, in []bool, wantGroup bool) []Row {
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		if in[i] == wantGroup {
			out = append(out, r)
		}
	}
	return out
}
