package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studyhub/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create inserts a new user. Returns ErrDuplicate when the email or
// username is already taken.
func (r *UserRepository) Create(user *models.User) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO users (email, username, name, password_hash, grade_level, hobby, reminder_enabled, reminder_hour, telegram_chat_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		err := DB.QueryRow(
			query,
			user.Email,
			user.Username,
			user.Name,
			user.PasswordHash,
			user.GradeLevel,
			user.Hobby,
			user.ReminderEnabled,
			user.ReminderHour,
			user.TelegramChatID,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create user: %v", err)
		}
		return nil
	}

	// SQLite has no RETURNING here, read the row back after inserting
	query := `
		INSERT INTO users (email, username, name, password_hash, grade_level, hobby, reminder_enabled, reminder_hour, telegram_chat_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := DB.Exec(
		query,
		user.Email,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.GradeLevel,
		user.Hobby,
		user.ReminderEnabled,
		user.ReminderHour,
		user.TelegramChatID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	user.ID = id

	err = DB.QueryRow("SELECT created_at, updated_at FROM users WHERE id = ?", user.ID).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to get timestamps: %v", err)
	}
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, rebind("SELECT * FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &user, nil
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, rebind("SELECT * FROM users WHERE email = ?"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %v", err)
	}
	return &user, nil
}

// GetByUsername returns a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, rebind("SELECT * FROM users WHERE username = ?"), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %v", err)
	}
	return &user, nil
}

// Update modifies profile and reminder settings for an existing user
func (r *UserRepository) Update(user *models.User) error {
	query := rebind(`
		UPDATE users SET
			name = ?,
			grade_level = ?,
			hobby = ?,
			reminder_enabled = ?,
			reminder_hour = ?,
			telegram_chat_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	_, err := DB.Exec(
		query,
		user.Name,
		user.GradeLevel,
		user.Hobby,
		user.ReminderEnabled,
		user.ReminderHour,
		user.TelegramChatID,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}

	err = DB.QueryRow(rebind("SELECT updated_at FROM users WHERE id = ?"), user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to get updated_at: %v", err)
	}
	return nil
}

// ListReminderEnabled returns users who opted into review reminders and
// have a telegram chat connected.
func (r *UserRepository) ListReminderEnabled() ([]models.User, error) {
	var users []models.User
	err := DB.Select(&users, "SELECT * FROM users WHERE reminder_enabled AND telegram_chat_id != 0")
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder users: %v", err)
	}
	return users, nil
}

// rebind converts ? placeholders for the active driver.
func rebind(query string) string {
	return DB.Rebind(query)
}
