package database

import (
	"fmt"
	"time"

	"github.com/example/studyhub/internal/proficiency"
	"github.com/example/studyhub/pkg/models"
)

// AttemptRepository handles database operations for quiz attempts
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// Create inserts a new attempt record
func (r *AttemptRepository) Create(attempt *models.QuizAttempt) error {
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now()
	}

	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO quiz_attempts (user_id, quiz_id, answers, score, correct_count, wrong_count,
				time_taken_seconds, attempt_proficiency, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		err := DB.QueryRow(
			query,
			attempt.UserID,
			attempt.QuizID,
			attempt.Answers,
			attempt.Score,
			attempt.CorrectCount,
			attempt.WrongCount,
			attempt.TimeTakenSeconds,
			attempt.AttemptProficiency,
			attempt.CompletedAt,
		).Scan(&attempt.ID)
		if err != nil {
			return fmt.Errorf("failed to create attempt: %v", err)
		}
		return nil
	}

	query := `
		INSERT INTO quiz_attempts (user_id, quiz_id, answers, score, correct_count, wrong_count,
			time_taken_seconds, attempt_proficiency, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := DB.Exec(
		query,
		attempt.UserID,
		attempt.QuizID,
		attempt.Answers,
		attempt.Score,
		attempt.CorrectCount,
		attempt.WrongCount,
		attempt.TimeTakenSeconds,
		attempt.AttemptProficiency,
		attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	attempt.ID = id
	return nil
}

// ListByUser returns a user's attempts, most recent first
func (r *AttemptRepository) ListByUser(userID int64) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	query := rebind("SELECT * FROM quiz_attempts WHERE user_id = ? ORDER BY completed_at DESC, id DESC")
	err := DB.Select(&attempts, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %v", err)
	}
	return attempts, nil
}

// ListByQuiz returns a user's attempts at one quiz, most recent first
func (r *AttemptRepository) ListByQuiz(userID, quizID int64) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	query := rebind("SELECT * FROM quiz_attempts WHERE user_id = ? AND quiz_id = ? ORDER BY completed_at DESC, id DESC")
	err := DB.Select(&attempts, query, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %v", err)
	}
	return attempts, nil
}

// Stats returns per-user attempt aggregates
func (r *AttemptRepository) Stats(userID int64) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	err := DB.Get(&total, rebind("SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %v", err)
	}
	stats["total_attempts"] = total

	var avgScore float64
	err = DB.Get(&avgScore, rebind("SELECT COALESCE(AVG(score), 0) FROM quiz_attempts WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average scores: %v", err)
	}
	stats["average_score"] = avgScore

	var passed int
	passQuery := rebind("SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ? AND score >= ?")
	err = DB.Get(&passed, passQuery, userID, proficiency.PassThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to count passed attempts: %v", err)
	}
	stats["passed_attempts"] = passed

	return stats, nil
}
