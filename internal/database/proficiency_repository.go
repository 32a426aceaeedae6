package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studyhub/pkg/models"
)

// ProficiencyRepository handles database operations for topic proficiency
type ProficiencyRepository struct{}

// NewProficiencyRepository creates a new repository instance
func NewProficiencyRepository() *ProficiencyRepository {
	return &ProficiencyRepository{}
}

// Get returns the proficiency row for a (user, topic) pair
func (r *ProficiencyRepository) Get(userID int64, topic string) (*models.TopicProficiency, error) {
	var p models.TopicProficiency
	query := rebind("SELECT * FROM topic_proficiency WHERE user_id = ? AND topic = ?")
	err := DB.Get(&p, query, userID, topic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic proficiency: %v", err)
	}
	return &p, nil
}

// MapForUser returns every topic proficiency the user has, keyed by topic
func (r *ProficiencyRepository) MapForUser(userID int64) (map[string]float64, error) {
	var rows []models.TopicProficiency
	err := DB.Select(&rows, rebind("SELECT * FROM topic_proficiency WHERE user_id = ? ORDER BY topic"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic proficiency: %v", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Topic] = row.Proficiency
	}
	return out, nil
}

// Upsert writes the blended proficiency for a (user, topic) pair, creating
// the row on the first submission for that topic.
func (r *ProficiencyRepository) Upsert(userID int64, topic string, value float64) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO topic_proficiency (user_id, topic, proficiency, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, topic)
			DO UPDATE SET proficiency = EXCLUDED.proficiency, updated_at = NOW()
		`
		if _, err := DB.Exec(query, userID, topic, value); err != nil {
			return fmt.Errorf("failed to upsert topic proficiency: %v", err)
		}
		return nil
	}

	// SQLite: check then write
	var exists int
	err := DB.Get(&exists, "SELECT COUNT(*) FROM topic_proficiency WHERE user_id = ? AND topic = ?", userID, topic)
	if err != nil {
		return fmt.Errorf("failed to check topic proficiency: %v", err)
	}

	if exists > 0 {
		_, err = DB.Exec(
			"UPDATE topic_proficiency SET proficiency = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND topic = ?",
			value, userID, topic,
		)
	} else {
		_, err = DB.Exec(
			"INSERT INTO topic_proficiency (user_id, topic, proficiency, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
			userID, topic, value,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert topic proficiency: %v", err)
	}
	return nil
}
