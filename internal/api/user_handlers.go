package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/srs"
)

func (s *Server) handleGetMe(c echo.Context) error {
	user, err := s.userRepo.GetByID(userID(c))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "user not found")
		}
		s.logger.Error("failed to load user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load profile")
	}
	return c.JSON(http.StatusOK, user)
}

// updateMeRequest carries optional profile fields; absent fields keep
// their stored values.
type updateMeRequest struct {
	Name            *string `json:"name"`
	GradeLevel      *string `json:"grade_level"`
	Hobby           *string `json:"hobby"`
	ReminderEnabled *bool   `json:"reminder_enabled"`
	ReminderHour    *int    `json:"reminder_hour"`
	TelegramChatID  *int64  `json:"telegram_chat_id"`
}

func (s *Server) handleUpdateMe(c echo.Context) error {
	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ReminderHour != nil && (*req.ReminderHour < 0 || *req.ReminderHour > 23) {
		return jsonError(c, http.StatusBadRequest, "reminder_hour must be between 0 and 23")
	}

	user, err := s.userRepo.GetByID(userID(c))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "user not found")
		}
		s.logger.Error("failed to load user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not update profile")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.GradeLevel != nil {
		user.GradeLevel = *req.GradeLevel
	}
	if req.Hobby != nil {
		user.Hobby = *req.Hobby
	}
	if req.ReminderEnabled != nil {
		user.ReminderEnabled = *req.ReminderEnabled
	}
	if req.ReminderHour != nil {
		user.ReminderHour = *req.ReminderHour
	}
	if req.TelegramChatID != nil {
		user.TelegramChatID = *req.TelegramChatID
	}

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to update user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not update profile")
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleGetProficiency(c echo.Context) error {
	topics, err := s.proficiencyRepo.MapForUser(userID(c))
	if err != nil {
		s.logger.Error("failed to load proficiency", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load proficiency")
	}
	return c.JSON(http.StatusOK, topics)
}

func (s *Server) handleGetStats(c echo.Context) error {
	uid := userID(c)
	now := time.Now().UTC()

	cardStats, err := s.flashcardRepo.Stats(uid, now)
	if err != nil {
		s.logger.Error("failed to load flashcard stats", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load stats")
	}

	cards, err := s.flashcardRepo.ListByUser(uid, database.ListFilter{})
	if err != nil {
		s.logger.Error("failed to list flashcards", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load stats")
	}
	mastered := 0
	for _, card := range cards {
		if srs.IsMastered(card.ReviewState) {
			mastered++
		}
	}
	cardStats["mastered"] = mastered

	attemptStats, err := s.attemptRepo.Stats(uid)
	if err != nil {
		s.logger.Error("failed to load attempt stats", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load stats")
	}

	topics, err := s.proficiencyRepo.MapForUser(uid)
	if err != nil {
		s.logger.Error("failed to load proficiency", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load stats")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"flashcards":  cardStats,
		"quizzes":     attemptStats,
		"proficiency": topics,
	})
}
