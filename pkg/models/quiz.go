package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionExplanation carries feedback text shown after answering: one
// message for the correct choice and optional per-option messages keyed by
// option index for the wrong ones.
type QuestionExplanation struct {
	Correct   string            `json:"correct"`
	Incorrect map[string]string `json:"incorrect,omitempty"`
}

// Question is a single multiple-choice quiz question.
type Question struct {
	ID            string               `json:"id"`
	Text          string               `json:"question"`
	Options       []string             `json:"options"`
	CorrectAnswer int                  `json:"correctAnswer"` // index into Options
	Difficulty    string               `json:"difficulty"`
	Explanation   *QuestionExplanation `json:"explanation,omitempty"`
}

// QuestionList stores questions as a JSON column.
type QuestionList []Question

// Value implements driver.Valuer.
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %v", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (q *QuestionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*q = nil
		return nil
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	default:
		return fmt.Errorf("unsupported questions column type %T", src)
	}
}

// Quiz represents a generated or practice quiz.
type Quiz struct {
	ID          int64        `json:"id" db:"id"`
	UserID      int64        `json:"user_id" db:"user_id"`
	LessonID    *int64       `json:"lesson_id,omitempty" db:"lesson_id"`
	Topic       string       `json:"topic" db:"topic"`
	Description string       `json:"description" db:"description"`
	Questions   QuestionList `json:"questions" db:"questions"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
