package models

import "time"

// ReviewState holds the spaced-repetition scheduling fields for one card.
// A card is created with NewReviewState defaults and the state changes only
// when a review is submitted.
type ReviewState struct {
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`
	IntervalDays int       `json:"interval_days" db:"interval_days"`
	Repetitions  int       `json:"repetitions" db:"repetitions"`
	NextReviewAt time.Time `json:"next_review_at" db:"next_review_at"`
	// Absent until the first review.
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	LastConfidence *int       `json:"last_confidence,omitempty" db:"last_confidence"`
}

// Flashcard represents a study card owned by a user.
type Flashcard struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"user_id" db:"user_id"`
	Topic       string `json:"topic" db:"topic"`
	Front       string `json:"front" db:"front"`
	Back        string `json:"back" db:"back"`
	Difficulty  string `json:"difficulty" db:"difficulty"` // easy, medium or hard
	Explanation string `json:"explanation" db:"explanation"`

	ReviewState

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TopicCount is one row of the flashcard topic aggregation.
type TopicCount struct {
	Topic string `json:"topic" db:"topic"`
	Count int    `json:"count" db:"count"`
}
