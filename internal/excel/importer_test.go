package excel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var importedAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func grid(rows ...[]string) [][]string { return rows }

func TestBuildCardsParsesRows(t *testing.T) {
	rows := grid(
		[]string{"Front", "Back", "Difficulty", "Explanation", "Topic"},
		[]string{"Powerhouse of the cell", "Mitochondria", "easy", "Makes ATP.", "biology"},
		[]string{"Basic unit of life", "Cell", "", "", "biology"},
	)

	result := &ImportResult{Errors: []string{}}
	cards := buildCards(rows, DefaultImportConfig(), importedAt, result)

	require.Len(t, cards, 2)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Empty(t, result.Errors)

	first := cards[0]
	assert.Equal(t, "biology", first.Topic)
	assert.Equal(t, "Powerhouse of the cell", first.Front)
	assert.Equal(t, "Mitochondria", first.Back)
	assert.Equal(t, "easy", first.Difficulty)
	assert.Equal(t, "Makes ATP.", first.Explanation)

	// Imported cards start unreviewed and immediately due.
	assert.Equal(t, 2.5, first.EaseFactor)
	assert.Equal(t, 0, first.Repetitions)
	assert.True(t, first.NextReviewAt.Equal(importedAt))
	assert.Nil(t, first.LastReviewedAt)

	assert.Equal(t, "medium", cards[1].Difficulty)
}

func TestBuildCardsTopicOverrideWins(t *testing.T) {
	rows := grid(
		[]string{"Front", "Back", "", "", "Topic"},
		[]string{"Solve x+1=2", "x=1", "", "", "history"},
	)

	config := DefaultImportConfig()
	config.Topic = "algebra"

	result := &ImportResult{Errors: []string{}}
	cards := buildCards(rows, config, importedAt, result)

	require.Len(t, cards, 1)
	assert.Equal(t, "algebra", cards[0].Topic)
}

func TestBuildCardsSectionHeaderSetsTopic(t *testing.T) {
	rows := grid(
		[]string{"Front", "Back"},
		[]string{"Irregular verbs"},
		[]string{"go", "went"},
		[]string{"see", "saw"},
	)

	result := &ImportResult{Errors: []string{}}
	cards := buildCards(rows, DefaultImportConfig(), importedAt, result)

	require.Len(t, cards, 2)
	assert.Equal(t, "Irregular verbs", cards[0].Topic)
	assert.Equal(t, "Irregular verbs", cards[1].Topic)
	assert.Equal(t, 2, result.TotalProcessed, "section header rows are not processed as cards")
}

func TestBuildCardsCollectsRowErrors(t *testing.T) {
	rows := grid(
		[]string{"Front", "Back", "", "", "Topic"},
		[]string{"", "orphan back", "", "", "biology"},
		[]string{"good front", "good back", "", "", ""},
		[]string{"fine front", "fine back", "", "", "biology"},
	)

	result := &ImportResult{Errors: []string{}}
	cards := buildCards(rows, DefaultImportConfig(), importedAt, result)

	require.Len(t, cards, 1)
	assert.Equal(t, 3, result.TotalProcessed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Row 2")
	assert.Contains(t, result.Errors[0], "front")
	assert.Contains(t, result.Errors[1], "Row 3")
	assert.Contains(t, result.Errors[1], "topic")
}

func TestBuildCardsSkipsDuplicateRows(t *testing.T) {
	rows := grid(
		[]string{"Front", "Back", "", "", "Topic"},
		[]string{"go", "went", "", "", "verbs"},
		[]string{"GO", "went again", "", "", "verbs"},
	)

	result := &ImportResult{Errors: []string{}}
	cards := buildCards(rows, DefaultImportConfig(), importedAt, result)

	require.Len(t, cards, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "went", cards[0].Back)
}

func TestNormalizeDifficulty(t *testing.T) {
	cases := map[string]string{
		"easy":   "easy",
		"EASY":   "easy",
		"1":      "easy",
		"2":      "easy",
		"3":      "medium",
		"medium": "medium",
		"hard":   "hard",
		"4":      "hard",
		"5":      "hard",
		"":       "medium",
		"brutal": "medium",
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeDifficulty(input), "input %q", input)
	}
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 1, columnToIndex("b"))
	assert.Equal(t, 25, columnToIndex("Z"))
	assert.Equal(t, 26, columnToIndex("AA"))
}

func TestReadCSVRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.csv")
	content := "Front,Back,Difficulty,Explanation,Topic\ngo,went,easy,,verbs\nsee,saw,,,verbs\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := readCSVRows(path)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"go", "went", "easy", "", "verbs"}, rows[1])
}

func TestReadExcelRowsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Front"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Back"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "go"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "went"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := readExcelRows(path, "Sheet1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "go", rows[1][0])
	assert.Equal(t, "went", rows[1][1])
}

func TestReadRowsDispatchesOnExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.CSV")
	require.NoError(t, os.WriteFile(path, []byte("Front,Back\ngo,went\n"), 0o644))

	config := DefaultImportConfig()
	config.FilePath = path

	rows, err := readRows(config)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
