package tpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeFor(t *testing.T, header []string, rows [][]string) (*Table, *ColumnMapping) {
	t.Helper()
	return Normalize(newTable(header, rows), nil)
}

func TestSanitize(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Game", "Plays", "Tickets", "TPT", "Profile"},
		[][]string{
			{"Skee Ball", "10", "30", "3", "Red"},
			{"Hoop Shot", "5", "20", "", ""},
		},
	)

	rows, err := Sanitize(table, mapping)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 30.0, rows[0].Tickets)
	assert.Equal(t, 10.0, rows[0].Plays)
	require.NotNil(t, rows[0].TicketsPerPlay)
	assert.Equal(t, 3.0, *rows[0].TicketsPerPlay)
	require.NotNil(t, rows[0].GameName)
	assert.Equal(t, "Skee Ball", *rows[0].GameName)
	assert.Equal(t, "Red", rows[0].Profile)

	// Blank ratio stays nil for later synthesis; blank profile falls
	// back to the display placeholder.
	assert.Nil(t, rows[1].TicketsPerPlay)
	assert.Equal(t, "N/A", rows[1].Profile)
}

func TestSanitizeDropsUncoercibleRows(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Game", "Plays", "Tickets"},
		[][]string{
			{"Skee Ball", "10", "30"},
			{"Totals", "", "1200"},       // subtotal line, no plays
			{"Hoop Shot", "five", "20"},  // words, not numbers
			{"Down Machine", "0", "0"},   // zeros are valid numbers
		},
	)

	rows, err := Sanitize(table, mapping)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Skee Ball", *rows[0].GameName)
	assert.Equal(t, "Down Machine", *rows[1].GameName)
}

func TestSanitizeRejectsNonFinite(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Plays", "Tickets"},
		[][]string{
			{"Inf", "30"},
			{"10", "NaN"},
			{"10", "30"},
		},
	)

	rows, err := Sanitize(table, mapping)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSanitizeMissingColumns(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Game", "Location"},
		[][]string{{"Skee Ball", "Front"}},
	)

	_, err := Sanitize(table, mapping)
	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []CanonicalField{FieldTickets, FieldPlays}, missingErr.Missing)
	assert.Equal(t, []string{"Game", "Location"}, missingErr.Available)
}

func TestSanitizeEmptyAfterCleaning(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Game", "Plays", "Tickets"},
		[][]string{
			{"Skee Ball", "n/a", "n/a"},
			{"Hoop Shot", "", ""},
		},
	)

	_, err := Sanitize(table, mapping)
	require.ErrorIs(t, err, ErrEmptyAfterCleaning)
	assert.Contains(t, err.Error(), "No valid data")
}

func TestSanitizeNoGameColumn(t *testing.T) {
	table, mapping := normalizeFor(t,
		[]string{"Plays", "Tickets"},
		[][]string{{"10", "30"}},
	)

	rows, err := Sanitize(table, mapping)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].GameName)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"3.5", fptr(3.5)},
		{"  42 ", fptr(42)},
		{"-1", fptr(-1)},
		{"", nil},
		{"abc", nil},
		{"Inf", nil},
		{"NaN", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func fptr(v float64) *float64 { return &v }
