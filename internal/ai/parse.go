package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/example/studyhub/pkg/models"
)

// ErrBadPayload is returned when a completion cannot be parsed into the
// requested structure even after cleanup.
var ErrBadPayload = errors.New("ai: malformed completion payload")

var trailingCommas = regexp.MustCompile(`,\s*([}\]])`)

var quoteFixer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// cleanJSON strips the wrapping chat models put around JSON payloads:
// markdown fences, prose before and after the payload, curly quotes used
// as string delimiters, and trailing commas.
func cleanJSON(raw string) (string, error) {
	s := quoteFixer.Replace(strings.TrimSpace(raw))

	start := strings.IndexAny(s, "[{")
	end := strings.LastIndexAny(s, "]}")
	if start < 0 || end < start {
		return "", ErrBadPayload
	}
	s = s[start : end+1]

	return trailingCommas.ReplaceAllString(s, "$1"), nil
}

// decodeJSON cleans a completion and unmarshals it into v.
func decodeJSON(raw string, v interface{}) error {
	cleaned, err := cleanJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// normalizeDifficulty maps whatever label the model produced onto the
// canonical easy/medium/hard set, defaulting to medium.
func normalizeDifficulty(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}

// ensureQuestionIDs gives every question a unique id, keeping the ones the
// model already assigned where possible.
func ensureQuestionIDs(questions []models.Question) {
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		id := strings.TrimSpace(questions[i].ID)
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		questions[i].ID = id
		seen[id] = true
	}
}

// validateQuestions rejects a generated quiz the grader could not score.
func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrBadPayload)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrBadPayload, i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("%w: question %d has %d options", ErrBadPayload, i, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct answer out of range", ErrBadPayload, i)
		}
	}
	return nil
}
