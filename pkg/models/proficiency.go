package models

import "time"

// TopicProficiency is the blended mastery estimate for one (user, topic)
// pair. Values stay in [0,1]. A row appears on the first quiz submission
// for the topic and is updated on every submission after that.
type TopicProficiency struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Topic       string    `json:"topic" db:"topic"`
	Proficiency float64   `json:"proficiency" db:"proficiency"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
