// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not set. There is no
// safe default for a signing key.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required")

// Config carries every tunable the service reads at boot. It is built once
// in main and passed down explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	Env      string
	HTTPAddr string

	// Database. DBType selects the driver: sqlite (default) or postgres.
	DBType      string
	DBPath      string // sqlite file path
	DatabaseURL string // postgres connection string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Content generation. An empty API key disables the generate endpoints
	// instead of failing boot.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Narration synthesis. Empty key disables audio for generated lessons.
	DeepgramAPIKey string
	DeepgramVoice  string
	AudioDir       string

	// Review reminders. Empty token disables the reminder scheduler.
	TelegramToken     string
	ReminderStartHour int
	ReminderEndHour   int

	// HTTP
	CORSOrigins []string
	GenerateRPM int // per-user generate requests per minute
}

// Default returns the configuration used when no environment is present.
func Default() Config {
	return Config{
		Env:               "production",
		HTTPAddr:          ":8000",
		DBType:            "sqlite",
		DBPath:            "data/studyhub.db",
		TokenTTL:          30 * time.Minute,
		OpenAIModel:       "gpt-4o-mini",
		DeepgramVoice:     "aura-asteria-en",
		AudioDir:          "data/audio",
		ReminderStartHour: 9,
		ReminderEndHour:   21,
		CORSOrigins:       []string{"*"},
		GenerateRPM:       5,
	}
}

// Load reads .env when present, then the environment, into a Config.
func Load() (Config, error) {
	// Missing .env is fine; production hosts set real variables.
	_ = godotenv.Load()

	cfg := Default()
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)

	cfg.DBType = getEnv("DB_TYPE", cfg.DBType)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.TokenTTL)

	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)

	cfg.DeepgramAPIKey = getEnv("DEEPGRAM_API_KEY", cfg.DeepgramAPIKey)
	cfg.DeepgramVoice = getEnv("DEEPGRAM_VOICE", cfg.DeepgramVoice)
	cfg.AudioDir = getEnv("AUDIO_DIR", cfg.AudioDir)

	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramToken)
	cfg.ReminderStartHour = getEnvInt("REMINDER_START_HOUR", cfg.ReminderStartHour)
	cfg.ReminderEndHour = getEnvInt("REMINDER_END_HOUR", cfg.ReminderEndHour)

	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitAndTrim(origins)
	}
	cfg.GenerateRPM = getEnvInt("GENERATE_RPM", cfg.GenerateRPM)

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
