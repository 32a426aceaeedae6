package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/studyhub/pkg/models"
)

// FlashcardRepository handles database operations for flashcards
type FlashcardRepository struct{}

// NewFlashcardRepository creates a new repository instance
func NewFlashcardRepository() *FlashcardRepository {
	return &FlashcardRepository{}
}

// Create inserts a new flashcard with its review state
func (r *FlashcardRepository) Create(card *models.Flashcard) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO flashcards (user_id, topic, front, back, difficulty, explanation,
				ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at, last_confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`
		err := DB.QueryRow(
			query,
			card.UserID,
			card.Topic,
			card.Front,
			card.Back,
			card.Difficulty,
			card.Explanation,
			card.EaseFactor,
			card.IntervalDays,
			card.Repetitions,
			card.NextReviewAt,
			card.LastReviewedAt,
			card.LastConfidence,
		).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create flashcard: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO flashcards (user_id, topic, front, back, difficulty, explanation,
			ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at, last_confidence,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := DB.Exec(
		query,
		card.UserID,
		card.Topic,
		card.Front,
		card.Back,
		card.Difficulty,
		card.Explanation,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.NextReviewAt,
		card.LastReviewedAt,
		card.LastConfidence,
	)
	if err != nil {
		return fmt.Errorf("failed to create flashcard: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	card.ID = id

	err = DB.QueryRow("SELECT created_at, updated_at FROM flashcards WHERE id = ?", card.ID).
		Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to get timestamps: %v", err)
	}
	return nil
}

// CreateBatch inserts a set of cards, typically one generated deck
func (r *FlashcardRepository) CreateBatch(cards []models.Flashcard) ([]models.Flashcard, error) {
	created := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		if err := r.Create(&card); err != nil {
			return created, err
		}
		created = append(created, card)
	}
	return created, nil
}

// GetByID returns a flashcard by ID
func (r *FlashcardRepository) GetByID(id int64) (*models.Flashcard, error) {
	var card models.Flashcard
	err := DB.Get(&card, rebind("SELECT * FROM flashcards WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard by ID: %v", err)
	}
	return &card, nil
}

// ListFilter narrows ListByUser results. Zero values mean no filtering.
type ListFilter struct {
	Topic      string
	Difficulty string
	DueOnly    bool
	Now        time.Time // compared against next_review_at when DueOnly is set
}

// ListByUser returns a user's flashcards, newest first, optionally filtered
func (r *FlashcardRepository) ListByUser(userID int64, filter ListFilter) ([]models.Flashcard, error) {
	query := "SELECT * FROM flashcards WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Topic != "" {
		query += " AND topic = ?"
		args = append(args, filter.Topic)
	}
	if filter.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, filter.Difficulty)
	}
	if filter.DueOnly {
		query += " AND next_review_at <= ?"
		args = append(args, filter.Now)
	}
	query += " ORDER BY created_at DESC"

	var cards []models.Flashcard
	err := DB.Select(&cards, rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %v", err)
	}
	return cards, nil
}

// Topics returns the user's topics with card counts, most cards first
func (r *FlashcardRepository) Topics(userID int64) ([]models.TopicCount, error) {
	var topics []models.TopicCount
	query := rebind(`
		SELECT topic, COUNT(*) as count
		FROM flashcards
		WHERE user_id = ?
		GROUP BY topic
		ORDER BY count DESC, topic
	`)
	err := DB.Select(&topics, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate topics: %v", err)
	}
	return topics, nil
}

// Update modifies the card content, leaving the review state untouched
func (r *FlashcardRepository) Update(card *models.Flashcard) error {
	query := rebind(`
		UPDATE flashcards SET
			topic = ?,
			front = ?,
			back = ?,
			difficulty = ?,
			explanation = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	_, err := DB.Exec(query, card.Topic, card.Front, card.Back, card.Difficulty, card.Explanation, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update flashcard: %v", err)
	}

	err = DB.QueryRow(rebind("SELECT updated_at FROM flashcards WHERE id = ?"), card.ID).Scan(&card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to get updated_at: %v", err)
	}
	return nil
}

// UpdateReviewState persists a freshly computed scheduling state
func (r *FlashcardRepository) UpdateReviewState(id int64, state models.ReviewState) error {
	query := rebind(`
		UPDATE flashcards SET
			ease_factor = ?,
			interval_days = ?,
			repetitions = ?,
			next_review_at = ?,
			last_reviewed_at = ?,
			last_confidence = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	_, err := DB.Exec(
		query,
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.NextReviewAt,
		state.LastReviewedAt,
		state.LastConfidence,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update review state: %v", err)
	}
	return nil
}

// Delete removes a flashcard
func (r *FlashcardRepository) Delete(id int64) error {
	_, err := DB.Exec(rebind("DELETE FROM flashcards WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard: %v", err)
	}
	return nil
}

// CountDue returns how many of the user's cards are due for review
func (r *FlashcardRepository) CountDue(userID int64, now time.Time) (int, error) {
	var count int
	query := rebind("SELECT COUNT(*) FROM flashcards WHERE user_id = ? AND next_review_at <= ?")
	err := DB.Get(&count, query, userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due flashcards: %v", err)
	}
	return count, nil
}

// Stats returns per-user flashcard aggregates
func (r *FlashcardRepository) Stats(userID int64, now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	err := DB.Get(&total, rebind("SELECT COUNT(*) FROM flashcards WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count flashcards: %v", err)
	}
	stats["total_cards"] = total

	due, err := r.CountDue(userID, now)
	if err != nil {
		return nil, err
	}
	stats["due_now"] = due

	var avgEase float64
	err = DB.Get(&avgEase, rebind("SELECT COALESCE(AVG(ease_factor), 0) FROM flashcards WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average ease factor: %v", err)
	}
	stats["average_ease"] = avgEase

	var reviewed int
	err = DB.Get(&reviewed, rebind("SELECT COUNT(*) FROM flashcards WHERE user_id = ? AND last_reviewed_at IS NOT NULL"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviewed flashcards: %v", err)
	}
	stats["reviewed_cards"] = reviewed

	return stats, nil
}
