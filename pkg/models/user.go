package models

import "time"

// User represents a learner account.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Username     string `json:"username" db:"username"`
	Name         string `json:"name" db:"name"`
	PasswordHash string `json:"-" db:"password_hash"`
	// Used to personalize generated lessons and examples.
	GradeLevel string `json:"grade_level" db:"grade_level"`
	Hobby      string `json:"hobby" db:"hobby"`
	// Review reminder preferences.
	ReminderEnabled bool  `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderHour    int   `json:"reminder_hour" db:"reminder_hour"` // 0-23, local time
	TelegramChatID  int64 `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
