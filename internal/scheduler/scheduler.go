// Package scheduler runs the hourly reminder job that nudges users with
// due flashcards.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/notify"
)

// Default window outside which no reminders are sent, regardless of a
// user's chosen hour.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 21
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  notify.Notifier
	startHour int
	endHour   int
	logger    *zap.Logger

	userRepo      *database.UserRepository
	flashcardRepo *database.FlashcardRepository
}

// New creates a new scheduler instance. Hours outside 0 to 23 fall back
// to the defaults.
func New(notifier notify.Notifier, startHour, endHour int, logger *zap.Logger) *Scheduler {
	if startHour < 0 || startHour > 23 {
		startHour = DefaultStartHour
	}
	if endHour < 0 || endHour > 23 {
		endHour = DefaultEndHour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		notifier:      notifier,
		startHour:     startHour,
		endHour:       endHour,
		logger:        logger,
		userRepo:      database.NewUserRepository(),
		flashcardRepo: database.NewFlashcardRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	s.runReminderPass(time.Now().UTC())
}

// runReminderPass sends a reminder to every opted-in user whose chosen
// hour matches now and who has cards waiting.
func (s *Scheduler) runReminderPass(now time.Time) {
	hour := now.Hour()
	if !withinWindow(hour, s.startHour, s.endHour) {
		s.logger.Debug("outside reminder window, skipping",
			zap.Int("hour", hour),
			zap.Int("start", s.startHour),
			zap.Int("end", s.endHour))
		return
	}

	users, err := s.userRepo.ListReminderEnabled()
	if err != nil {
		s.logger.Error("failed to list users for reminders", zap.Error(err))
		return
	}

	for i := range users {
		user := &users[i]
		if user.ReminderHour != hour {
			continue
		}

		count, err := s.flashcardRepo.CountDue(user.ID, now)
		if err != nil {
			s.logger.Error("failed to count due cards",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
			continue
		}
		if count == 0 {
			continue
		}

		if err := s.notifier.SendReminder(user, count); err != nil {
			s.logger.Warn("failed to deliver reminder",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
		}
	}
}

// RunManualCheck forces a reminder check for a specific user, ignoring
// the window and the user's chosen hour.
func (s *Scheduler) RunManualCheck(userID int64) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	count, err := s.flashcardRepo.CountDue(userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	return s.notifier.SendReminder(user, count)
}

// withinWindow reports whether hour falls inside the quiet-hours window.
// A window wrapping midnight (start > end) is allowed.
func withinWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}
