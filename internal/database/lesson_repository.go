package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studyhub/pkg/models"
)

// LessonRepository handles database operations for lessons
type LessonRepository struct{}

// NewLessonRepository creates a new repository instance
func NewLessonRepository() *LessonRepository {
	return &LessonRepository{}
}

// Create inserts a new lesson
func (r *LessonRepository) Create(lesson *models.Lesson) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO lessons (user_id, topic, title, narration_script, duration, tailored_to_interest, audio_url, board_actions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`
		err := DB.QueryRow(
			query,
			lesson.UserID,
			lesson.Topic,
			lesson.Title,
			lesson.NarrationScript,
			lesson.Duration,
			lesson.TailoredToInterest,
			lesson.AudioURL,
			lesson.BoardActions,
		).Scan(&lesson.ID, &lesson.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create lesson: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO lessons (user_id, topic, title, narration_script, duration, tailored_to_interest, audio_url, board_actions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	result, err := DB.Exec(
		query,
		lesson.UserID,
		lesson.Topic,
		lesson.Title,
		lesson.NarrationScript,
		lesson.Duration,
		lesson.TailoredToInterest,
		lesson.AudioURL,
		lesson.BoardActions,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	lesson.ID = id

	err = DB.QueryRow("SELECT created_at FROM lessons WHERE id = ?", lesson.ID).Scan(&lesson.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to get timestamps: %v", err)
	}
	return nil
}

// GetByID returns a lesson by ID
func (r *LessonRepository) GetByID(id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	err := DB.Get(&lesson, rebind("SELECT * FROM lessons WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by ID: %v", err)
	}
	return &lesson, nil
}

// ListByUser returns a user's lessons, newest first, optionally by topic
func (r *LessonRepository) ListByUser(userID int64, topic string) ([]models.Lesson, error) {
	query := "SELECT * FROM lessons WHERE user_id = ?"
	args := []interface{}{userID}
	if topic != "" {
		query += " AND topic = ?"
		args = append(args, topic)
	}
	query += " ORDER BY created_at DESC"

	var lessons []models.Lesson
	err := DB.Select(&lessons, rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %v", err)
	}
	return lessons, nil
}
