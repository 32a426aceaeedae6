package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerMap maps question id to the chosen option index, stored as JSON.
type AnswerMap map[string]int

// Value implements driver.Valuer.
func (a AnswerMap) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %v", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (a *AnswerMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported answers column type %T", src)
	}
}

// QuizAttempt is the persisted audit record of one quiz submission.
type QuizAttempt struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	QuizID           int64     `json:"quiz_id" db:"quiz_id"`
	Answers          AnswerMap `json:"answers" db:"answers"`
	Score            float64   `json:"score" db:"score"` // percent, 0-100
	CorrectCount     int       `json:"correct_count" db:"correct_count"`
	WrongCount       int       `json:"wrong_count" db:"wrong_count"`
	TimeTakenSeconds float64   `json:"time_taken_seconds" db:"time_taken_seconds"`
	// Weighted score in [0,1] blended into the topic proficiency.
	AttemptProficiency float64   `json:"proficiency_score" db:"attempt_proficiency"`
	CompletedAt        time.Time `json:"completed_at" db:"completed_at"`
}
