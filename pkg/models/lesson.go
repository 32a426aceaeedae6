package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BoardAction is one whiteboard instruction emitted alongside a lesson
// narration, e.g. {"type":"write_text","content":"Photosynthesis"}.
type BoardAction struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// BoardActionList stores board actions as a JSON column.
type BoardActionList []BoardAction

// Value implements driver.Valuer.
func (b BoardActionList) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board actions: %v", err)
	}
	return data, nil
}

// Scan implements sql.Scanner.
func (b *BoardActionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported board actions column type %T", src)
	}
}

// Lesson represents a generated lesson with optional narration audio.
type Lesson struct {
	ID              int64   `json:"id" db:"id"`
	UserID          int64   `json:"user_id" db:"user_id"`
	Topic           string  `json:"topic" db:"topic"`
	Title           string  `json:"title" db:"title"`
	NarrationScript string  `json:"narration_script" db:"narration_script"`
	Duration        float64 `json:"duration" db:"duration"` // seconds, as reported by the generator
	// Which learner hobby the lesson was tailored to, if any.
	TailoredToInterest string          `json:"tailored_to_interest" db:"tailored_to_interest"`
	AudioURL           *string         `json:"audio_url,omitempty" db:"audio_url"`
	BoardActions       BoardActionList `json:"board_actions" db:"board_actions"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}
