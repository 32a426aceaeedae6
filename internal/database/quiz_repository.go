package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studyhub/pkg/models"
)

// QuizRepository handles database operations for quizzes
type QuizRepository struct{}

// NewQuizRepository creates a new repository instance
func NewQuizRepository() *QuizRepository {
	return &QuizRepository{}
}

// Create inserts a new quiz
func (r *QuizRepository) Create(quiz *models.Quiz) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO quizzes (user_id, lesson_id, topic, description, questions)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		err := DB.QueryRow(
			query,
			quiz.UserID,
			quiz.LessonID,
			quiz.Topic,
			quiz.Description,
			quiz.Questions,
		).Scan(&quiz.ID, &quiz.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create quiz: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO quizzes (user_id, lesson_id, topic, description, questions, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	result, err := DB.Exec(query, quiz.UserID, quiz.LessonID, quiz.Topic, quiz.Description, quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	quiz.ID = id

	err = DB.QueryRow("SELECT created_at FROM quizzes WHERE id = ?", quiz.ID).Scan(&quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to get timestamps: %v", err)
	}
	return nil
}

// GetByID returns a quiz by ID
func (r *QuizRepository) GetByID(id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	err := DB.Get(&quiz, rebind("SELECT * FROM quizzes WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by ID: %v", err)
	}
	return &quiz, nil
}

// ListByUser returns a user's quizzes, newest first, optionally by topic
func (r *QuizRepository) ListByUser(userID int64, topic string) ([]models.Quiz, error) {
	query := "SELECT * FROM quizzes WHERE user_id = ?"
	args := []interface{}{userID}
	if topic != "" {
		query += " AND topic = ?"
		args = append(args, topic)
	}
	query += " ORDER BY created_at DESC"

	var quizzes []models.Quiz
	err := DB.Select(&quizzes, rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %v", err)
	}
	return quizzes, nil
}
