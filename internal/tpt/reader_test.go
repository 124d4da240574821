package tpt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeTempExcel builds a one-sheet workbook from a row grid.
func writeTempExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, cell))
		}
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, "Game,Plays,Tickets\nSkee Ball,10,30\nHoop Shot,5,20\n")

	table, headerRow, err := NewReader().Read(path, FileTypeCSV, nil)
	require.NoError(t, err)

	// CSV input has no header detection; the first line is the header.
	assert.Nil(t, headerRow)
	assert.Equal(t, []string{"Game", "Plays", "Tickets"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Skee Ball", table.Cell(0, 0))
	assert.Equal(t, "20", table.Cell(1, 2))
}

func TestReadCSVRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "Game,Plays,Tickets\nSkee Ball,10\nHoop Shot,5,20,extra\n")

	table, _, err := NewReader().Read(path, FileTypeCSV, nil)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Cell(0, 2))
	assert.Equal(t, "20", table.Cell(1, 2))
}

func TestReadCSVBlankHeaderCells(t *testing.T) {
	path := writeTempCSV(t, "Game,,Tickets\nSkee Ball,10,30\n")

	table, _, err := NewReader().Read(path, FileTypeCSV, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Game", "Unnamed: 1", "Tickets"}, table.Columns)
}

func TestReadFileNotFound(t *testing.T) {
	_, _, err := NewReader().Read("/nonexistent/input.csv", FileTypeCSV, nil)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, _, err = NewReader().Read("/nonexistent/input.xlsx", FileTypeExcel, nil)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadUnsupportedFileType(t *testing.T) {
	_, _, err := NewReader().Read("whatever.pdf", "pdf", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestReadExcelHeaderOnFirstRow(t *testing.T) {
	path := writeTempExcel(t, [][]interface{}{
		{"Game", "Plays", "Tickets"},
		{"Skee Ball", 10, 30},
	})

	table, headerRow, err := NewReader().Read(path, FileTypeExcel, nil)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 0, *headerRow)
	assert.Equal(t, []string{"Game", "Plays", "Tickets"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Skee Ball", table.Cell(0, 0))
}

func TestReadExcelHeaderBelowBanner(t *testing.T) {
	// Vendor exports often lead with a decorative title block before the
	// real header row.
	path := writeTempExcel(t, [][]interface{}{
		{"Weekly Redemption Summary"},
		{" "},
		{"Game", "Plays", "Tickets", "TPT"},
		{"Skee Ball", 10, 30, 3.0},
		{"Hoop Shot", 5, 20, 4.0},
	})

	table, headerRow, err := NewReader().Read(path, FileTypeExcel, nil)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 2, *headerRow)
	assert.Equal(t, []string{"Game", "Plays", "Tickets", "TPT"}, table.Columns)
	assert.Len(t, table.Rows, 2)
}

func TestReadExcelForcedHeaderRow(t *testing.T) {
	path := writeTempExcel(t, [][]interface{}{
		{"Game", "Plays", "Tickets"},
		{"Game", "Plays", "Tickets"},
		{"Skee Ball", 10, 30},
	})

	forced := 1
	table, headerRow, err := NewReader().Read(path, FileTypeExcel, &forced)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 1, *headerRow)
	assert.Len(t, table.Rows, 1)
}

func TestReadExcelTwoRowHeader(t *testing.T) {
	// Merged banner cells leave most first-row labels blank; the real
	// labels sit on the second row and should win during the flatten.
	path := writeTempExcel(t, [][]interface{}{
		{"Redemption", "", "", "Report"},
		{"Game", "Plays", "Tickets", "TPT"},
		{"Skee Ball", 10, 30, 3.0},
	})

	r := NewReader()
	// Force row 0 so the unnamed-ratio retry path is exercised rather
	// than detection simply picking row 1.
	forced := 0
	table, headerRow, err := r.Read(path, FileTypeExcel, &forced)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 0, *headerRow)
	assert.Equal(t, []string{"Game", "Plays", "Tickets", "TPT"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Skee Ball", table.Cell(0, 0))
}

func TestReadExcelMergedBannerHeader(t *testing.T) {
	// A merged banner cell is returned as a one-cell row, and it can
	// score high enough on keywords to be picked as the header. The
	// table must still be sized from the data rows so the unnamed-ratio
	// retry reaches the real labels underneath.
	path := writeTempExcel(t, [][]interface{}{
		{"Game Plays Tickets Export"},
		{"Game", "Plays", "Tickets", "TPT"},
		{"Skee Ball", 10, 30, 3.0},
		{"Hoop Shot", 5, 20, 4.0},
	})

	table, headerRow, err := NewReader().Read(path, FileTypeExcel, nil)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 0, *headerRow)
	assert.Equal(t, []string{"Game", "Plays", "Tickets", "TPT"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Skee Ball", table.Cell(0, 0))
	assert.Equal(t, "20", table.Cell(1, 2))
}

func TestReadExcelMergedBannerBelowBlankRows(t *testing.T) {
	path := writeTempExcel(t, [][]interface{}{
		{" "},
		{" "},
		{"Game Plays Tickets Export"},
		{"Game", "Plays", "Tickets", "TPT"},
		{"Skee Ball", 10, 30, 3.0},
	})

	table, headerRow, err := NewReader().Read(path, FileTypeExcel, nil)
	require.NoError(t, err)

	require.NotNil(t, headerRow)
	assert.Equal(t, 2, *headerRow)

	// The recovered labels must resolve through normalization.
	_, mapping := Normalize(table, nil)
	assert.True(t, mapping.Has(FieldPlays))
	assert.True(t, mapping.Has(FieldTickets))
	assert.True(t, mapping.Has(FieldGameName))
	assert.True(t, mapping.Has(FieldTicketsPerPlay))
}

func TestHeaderScore(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  int
	}{
		{"full header", []string{"Game", "Plays", "Tickets", "TPT"}, 4},
		{"name and plays", []string{"Machine Name", "Total Plays"}, 2},
		{"title row", []string{"Weekly Summary"}, 0},
		{"tix per play spelling", []string{"Tix/Play"}, 2}, // "play" and the ratio bucket
		{"data row", []string{"Skee Ball", "10", "30"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, headerScore(tt.cells))
		})
	}
}

func TestDecorativeRow(t *testing.T) {
	assert.True(t, decorativeRow([]string{"", "", ""}))
	assert.True(t, decorativeRow([]string{"Unnamed: 0", "", "Unnamed: 2"}))
	assert.False(t, decorativeRow([]string{"Game", "", ""}))
}

func TestPadRows(t *testing.T) {
	out := padRows([][]string{{"a"}, {"a", "b", "c", "d"}}, 3)
	assert.Equal(t, []string{"a", "", ""}, out[0])
	assert.Equal(t, []string{"a", "b", "c"}, out[1])
}
