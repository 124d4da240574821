package tpt

import (
	"sort"
	"strconv"
	"time"
)

// GameRow is one machine's line in the report detail table. Field names
// match what the UI table binds to.
type GameRow struct {
	Profile       string   `json:"Profile"`
	GameName      string   `json:"GameName"`
	TPTIndividual *float64 `json:"TPTIndividual"`
	TotalTickets  float64  `json:"TotalTickets"`
	TotalPlays    float64  `json:"TotalPlays"`
}

// Report is the calculator's output contract. It is built once per
// invocation and never mutated; the snapshot written to disk is the same
// JSON the API returns.
type Report struct {
	GamesOutOfRange      int       `json:"games_out_of_range"`
	GamesOutOfRangeNames []string  `json:"games_out_of_range_names"`
	TotalTPTAverage      Average   `json:"total_tpt_average"`
	TPTWithBlaster       Average   `json:"tpt_with_blaster"`
	TPTWithoutBlaster    Average   `json:"tpt_without_blaster"`
	Message              string    `json:"message"`
	IndividualGames      []GameRow `json:"individual_games"`
	BelowRangeCount      int       `json:"below_range_count"`
	AboveRangeCount      int       `json:"above_range_count"`
	BelowRangeNames      []string  `json:"below_range_names"`
	AboveRangeNames      []string  `json:"above_range_names"`
	RangeLow             float64   `json:"range_low"`
	RangeHigh            float64   `json:"range_high"`
	FileName             string    `json:"file_name"`
	ProcessedAt          string    `json:"processed_at"`
	HeaderRowUsed        *int      `json:"header_row_used"`
}

// Assemble packages the metrics bundle and per-row detail into the final
// report. Detail rows are sorted ascending by game name (missing names
// sort as the empty string) so output is deterministic for a given
// input.
func Assemble(rows []Row, m Metrics, low, high float64, fileName string, headerRowUsed *int) *Report {
	belowNames := namesOf(rows, m.Below)
	aboveNames := namesOf(rows, m.Above)

	combined := make([]string, 0, len(belowNames)+len(aboveNames))
	combined = append(combined, belowNames...)
	combined = append(combined, aboveNames...)

	detail := make([]GameRow, 0, len(rows))
	for _, r := range rows {
		gr := GameRow{
			Profile:      r.Profile,
			GameName:     nameOf(r),
			TotalTickets: r.Tickets,
			TotalPlays:   r.Plays,
		}
		if tpt := EffectiveTPT(r); tpt != nil {
			rounded := round2(*tpt)
			gr.TPTIndividual = &rounded
		}
		detail = append(detail, gr)
	}
	sort.SliceStable(detail, func(i, j int) bool {
		return detail[i].GameName < detail[j].GameName
	})

	return &Report{
		GamesOutOfRange:      len(m.Below) + len(m.Above),
		GamesOutOfRangeNames: combined,
		TotalTPTAverage:      m.OverallAverage,
		TPTWithBlaster:       m.GroupAverage,
		TPTWithoutBlaster:    m.NonGroupAverage,
		Message:              completionMessage(m),
		IndividualGames:      detail,
		BelowRangeCount:      len(m.Below),
		AboveRangeCount:      len(m.Above),
		BelowRangeNames:      belowNames,
		AboveRangeNames:      aboveNames,
		RangeLow:             low,
		RangeHigh:            high,
		FileName:             fileName,
		ProcessedAt:          time.Now().UTC().Format("2006-01-02T15:04:05") + "Z",
		HeaderRowUsed:        headerRowUsed,
	}
}

func completionMessage(m Metrics) string {
	switch {
	case m.IncludedGroup:
		return "Calculations complete (including Birthday Blaster)."
	case !m.HasGameColumn:
		return "Calculations complete."
	default:
		return "Calculations complete (excluding Birthday Blaster)."
	}
}

func nameOf(r Row) string {
	if r.GameName == nil {
		return ""
	}
	return *r.GameName
}

func namesOf(rows []Row, idx []int) []string {
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, nameOf(rows[i]))
	}
	return names
}

// jsonNumber renders a float the way encoding/json would, using the
// shortest exact representation.
func jsonNumber(v float64) []byte {
	return strconv.AppendFloat(nil, v, 'f', -1, 64)
}
