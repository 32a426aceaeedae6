package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Sentinel errors repositories translate driver errors into.
var (
	ErrNotFound  = errors.New("database: not found")
	ErrDuplicate = errors.New("database: duplicate")
)

// Connect establishes a connection to the database. dbType selects the
// driver: "postgres" connects to databaseURL, anything else opens the
// SQLite file at dbPath.
func Connect(dbType, dbPath, databaseURL string) error {
	if dbType == "postgres" {
		db, err := sqlx.Connect("postgres", databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		DB = db
		return initializeSchema()
	}

	// Create data directory if it doesn't exist
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// isUniqueViolation reports whether err came from a unique constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	if DB.DriverName() == "postgres" {
		return initializePostgresSchema()
	}
	return initializeSQLiteSchema()
}

func initializeSQLiteSchema() error {
	// Create users table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			grade_level TEXT NOT NULL DEFAULT '',
			hobby TEXT NOT NULL DEFAULT '',
			reminder_enabled BOOLEAN NOT NULL DEFAULT false,
			reminder_hour INTEGER NOT NULL DEFAULT 9,
			telegram_chat_id INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	// Create topic_proficiency table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS topic_proficiency (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			topic TEXT NOT NULL,
			proficiency REAL NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(user_id, topic)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create topic_proficiency table: %v", err)
	}

	// Create flashcards table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS flashcards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			topic TEXT NOT NULL,
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT 'medium',
			explanation TEXT NOT NULL DEFAULT '',
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review_at TIMESTAMP NOT NULL,
			last_reviewed_at TIMESTAMP,
			last_confidence INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create flashcards table: %v", err)
	}

	// Create lessons table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS lessons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			topic TEXT NOT NULL,
			title TEXT NOT NULL,
			narration_script TEXT NOT NULL DEFAULT '',
			duration REAL NOT NULL DEFAULT 0,
			tailored_to_interest TEXT NOT NULL DEFAULT '',
			audio_url TEXT,
			board_actions TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create lessons table: %v", err)
	}

	// Create quizzes table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS quizzes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			lesson_id INTEGER,
			topic TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			questions TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (lesson_id) REFERENCES lessons(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quizzes table: %v", err)
	}

	// Create quiz_attempts table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			quiz_id INTEGER NOT NULL,
			answers TEXT NOT NULL DEFAULT '{}',
			score REAL NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			wrong_count INTEGER NOT NULL DEFAULT 0,
			time_taken_seconds REAL NOT NULL DEFAULT 0,
			attempt_proficiency REAL NOT NULL DEFAULT 0,
			completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_attempts table: %v", err)
	}

	return nil
}

func initializePostgresSchema() error {
	statements := []struct {
		table string
		ddl   string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				grade_level TEXT NOT NULL DEFAULT '',
				hobby TEXT NOT NULL DEFAULT '',
				reminder_enabled BOOLEAN NOT NULL DEFAULT false,
				reminder_hour INTEGER NOT NULL DEFAULT 9,
				telegram_chat_id BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`},
		{"topic_proficiency", `
			CREATE TABLE IF NOT EXISTS topic_proficiency (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				topic TEXT NOT NULL,
				proficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE(user_id, topic)
			)
		`},
		{"flashcards", `
			CREATE TABLE IF NOT EXISTS flashcards (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				topic TEXT NOT NULL,
				front TEXT NOT NULL,
				back TEXT NOT NULL,
				difficulty TEXT NOT NULL DEFAULT 'medium',
				explanation TEXT NOT NULL DEFAULT '',
				ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 0,
				repetitions INTEGER NOT NULL DEFAULT 0,
				next_review_at TIMESTAMPTZ NOT NULL,
				last_reviewed_at TIMESTAMPTZ,
				last_confidence INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`},
		{"lessons", `
			CREATE TABLE IF NOT EXISTS lessons (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				topic TEXT NOT NULL,
				title TEXT NOT NULL,
				narration_script TEXT NOT NULL DEFAULT '',
				duration DOUBLE PRECISION NOT NULL DEFAULT 0,
				tailored_to_interest TEXT NOT NULL DEFAULT '',
				audio_url TEXT,
				board_actions TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`},
		{"quizzes", `
			CREATE TABLE IF NOT EXISTS quizzes (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				lesson_id BIGINT REFERENCES lessons(id),
				topic TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				questions TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`},
		{"quiz_attempts", `
			CREATE TABLE IF NOT EXISTS quiz_attempts (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
				answers TEXT NOT NULL DEFAULT '{}',
				score DOUBLE PRECISION NOT NULL DEFAULT 0,
				correct_count INTEGER NOT NULL DEFAULT 0,
				wrong_count INTEGER NOT NULL DEFAULT 0,
				time_taken_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
				attempt_proficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
				completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`},
	}

	for _, s := range statements {
		if _, err := DB.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %v", s.table, err)
		}
	}
	return nil
}
