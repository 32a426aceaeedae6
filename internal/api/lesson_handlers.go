package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/audio"
	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/pkg/models"
)

type generateLessonRequest struct {
	Topic string `json:"topic"`
}

func (s *Server) handleGenerateLesson(c echo.Context) error {
	var req generateLessonRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return jsonError(c, http.StatusBadRequest, "topic is required")
	}
	if !s.generator.Enabled() {
		return jsonError(c, http.StatusServiceUnavailable, "content generation is not configured")
	}

	uid := userID(c)
	user, err := s.userRepo.GetByID(uid)
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not generate lesson")
	}

	content, err := s.generator.GenerateLesson(c.Request().Context(), req.Topic, user.GradeLevel, user.Hobby)
	if err != nil {
		s.logger.Error("lesson generation failed", zap.String("topic", req.Topic), zap.Error(err))
		return jsonError(c, http.StatusBadGateway, "generation failed, please try again")
	}

	lesson := &models.Lesson{
		UserID:             uid,
		Topic:              req.Topic,
		Title:              content.Title,
		NarrationScript:    content.NarrationScript,
		Duration:           content.Duration,
		TailoredToInterest: content.TailoredToInterest,
		BoardActions:       content.BoardActions,
	}

	// Narration audio is best effort; the lesson is delivered with or
	// without it.
	if s.synth != nil {
		if data, err := s.synth.Synthesize(c.Request().Context(), content.NarrationScript); err != nil {
			if !errors.Is(err, audio.ErrDisabled) {
				s.logger.Warn("lesson audio synthesis failed", zap.String("topic", req.Topic), zap.Error(err))
			}
		} else if name, err := s.saveAudio(data); err != nil {
			s.logger.Warn("failed to store lesson audio", zap.Error(err))
		} else {
			url := "/audio/" + name
			lesson.AudioURL = &url
		}
	}

	if err := s.lessonRepo.Create(lesson); err != nil {
		s.logger.Error("failed to save lesson", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not save lesson")
	}
	return c.JSON(http.StatusCreated, lesson)
}

// saveAudio writes synthesized narration under the audio directory and
// returns the file name.
func (s *Server) saveAudio(data []byte) (string, error) {
	if err := os.MkdirAll(s.cfg.AudioDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ".mp3"
	if err := os.WriteFile(filepath.Join(s.cfg.AudioDir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Server) handleListLessons(c echo.Context) error {
	lessons, err := s.lessonRepo.ListByUser(userID(c), c.QueryParam("topic"))
	if err != nil {
		s.logger.Error("failed to list lessons", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list lessons")
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return c.JSON(http.StatusOK, lessons)
}

func (s *Server) handleGetLesson(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid lesson id")
	}

	lesson, err := s.lessonRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "lesson not found")
		}
		s.logger.Error("failed to load lesson", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not load lesson")
	}
	if lesson.UserID != userID(c) {
		return jsonError(c, http.StatusNotFound, "lesson not found")
	}
	return c.JSON(http.StatusOK, lesson)
}
