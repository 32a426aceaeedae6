// Package excel imports flashcard decks from spreadsheet files.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/srs"
	"github.com/example/studyhub/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	FrontColumn       string // Column with the card front
	BackColumn        string // Column with the card back
	DifficultyColumn  string // Column with the difficulty
	ExplanationColumn string // Column with the explanation
	TopicColumn       string // Column with the topic
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
	Topic             string // Overrides the topic column for every card when set
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FrontColumn:       "A",
		BackColumn:        "B",
		DifficultyColumn:  "C",
		ExplanationColumn: "D",
		TopicColumn:       "E",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// ImportDeck imports flashcards for a user from an Excel or CSV file.
// Imported cards start with a fresh review state and are due immediately.
func ImportDeck(userID int64, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	cards := buildCards(rows, config, time.Now().UTC(), result)

	flashcardRepo := database.NewFlashcardRepository()

	// Skip cards the user already has so re-importing a deck is harmless.
	existing, err := flashcardRepo.ListByUser(userID, database.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing flashcards: %v", err)
	}
	known := make(map[string]bool, len(existing))
	for _, card := range existing {
		known[deckKey(card.Topic, card.Front)] = true
	}

	fresh := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		if known[deckKey(card.Topic, card.Front)] {
			result.Skipped++
			continue
		}
		card.UserID = userID
		fresh = append(fresh, card)
	}

	created, err := flashcardRepo.CreateBatch(fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to save imported flashcards: %v", err)
	}
	result.Imported = len(created)

	return result, nil
}

// readRows loads the raw cell grid, dispatching on the file extension.
func readRows(config ImportConfig) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return readCSVRows(config.FilePath)
	}
	return readExcelRows(config.FilePath, config.SheetName)
}

func readExcelRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true    // Allow lazy quotes for hand-edited files

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %v", err)
	}
	return rows, nil
}

// buildCards turns the raw grid into flashcards, collecting per-row
// errors in result instead of aborting the whole file. A row with only
// its front cell filled acts as a section header and sets the topic for
// the rows below it.
func buildCards(rows [][]string, config ImportConfig, now time.Time, result *ImportResult) []models.Flashcard {
	cards := make([]models.Flashcard, 0, len(rows))
	seen := make(map[string]bool)
	currentTopic := ""

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}

		front := cellValue(row, config.FrontColumn)
		back := cellValue(row, config.BackColumn)
		rowTopic := cellValue(row, config.TopicColumn)

		if front != "" && back == "" && rowTopic == "" {
			currentTopic = strings.Trim(front, "\"")
			continue
		}

		result.TotalProcessed++

		card, err := cardFromRow(row, config, currentTopic, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		key := deckKey(card.Topic, card.Front)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		cards = append(cards, card)
	}

	return cards
}

// cardFromRow extracts one flashcard from a row.
func cardFromRow(row []string, config ImportConfig, currentTopic string, now time.Time) (models.Flashcard, error) {
	front := cellValue(row, config.FrontColumn)
	back := cellValue(row, config.BackColumn)

	if front == "" {
		return models.Flashcard{}, fmt.Errorf("front cannot be empty")
	}
	if back == "" {
		return models.Flashcard{}, fmt.Errorf("back cannot be empty")
	}

	topic := config.Topic
	if topic == "" {
		topic = cellValue(row, config.TopicColumn)
	}
	if topic == "" {
		topic = currentTopic
	}
	if topic == "" {
		return models.Flashcard{}, fmt.Errorf("topic cannot be empty")
	}

	return models.Flashcard{
		Topic:       topic,
		Front:       front,
		Back:        back,
		Difficulty:  normalizeDifficulty(cellValue(row, config.DifficultyColumn)),
		Explanation: cellValue(row, config.ExplanationColumn),
		ReviewState: srs.NewReviewState(now),
	}, nil
}

// cellValue returns the trimmed cell under a column letter, or "" when
// the row is too short or the column is not configured.
func cellValue(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeDifficulty maps spreadsheet difficulty values onto the three
// levels (easy, medium, hard). Numeric scales from 1 to 5 are accepted too;
// anything unrecognized falls back to medium.
func normalizeDifficulty(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy", "1", "2":
		return "easy"
	case "hard", "4", "5":
		return "hard"
	default:
		return "medium"
	}
}

// deckKey identifies a card within a user's collection for dedupe.
func deckKey(topic, front string) string {
	return strings.ToLower(topic) + "|" + strings.ToLower(front)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
