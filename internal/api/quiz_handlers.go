package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/practice"
	"github.com/example/studyhub/internal/proficiency"
	"github.com/example/studyhub/pkg/models"
)

type generateQuizRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	LessonID    *int64 `json:"lesson_id"`
}

func (s *Server) handleGenerateQuiz(c echo.Context) error {
	var req generateQuizRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if !s.generator.Enabled() {
		return jsonError(c, http.StatusServiceUnavailable, "content generation is not configured")
	}

	// Quizzes may follow a lesson; then the questions draw on its script.
	var lessonScript string
	if req.LessonID != nil {
		lesson, err := s.lessonRepo.GetByID(*req.LessonID)
		if err != nil || lesson.UserID != userID(c) {
			return jsonError(c, http.StatusNotFound, "lesson not found")
		}
		lessonScript = lesson.NarrationScript
		if req.Topic == "" {
			req.Topic = lesson.Topic
		}
	}
	if req.Topic == "" {
		return jsonError(c, http.StatusBadRequest, "topic is required")
	}

	questions, err := s.generator.GenerateQuiz(c.Request().Context(), req.Topic, req.Description, lessonScript)
	if err != nil {
		s.logger.Error("quiz generation failed", zap.String("topic", req.Topic), zap.Error(err))
		return jsonError(c, http.StatusBadGateway, "generation failed, please try again")
	}

	quiz := &models.Quiz{
		UserID:      userID(c),
		LessonID:    req.LessonID,
		Topic:       req.Topic,
		Description: req.Description,
		Questions:   questions,
	}
	if err := s.quizRepo.Create(quiz); err != nil {
		s.logger.Error("failed to save quiz", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not save quiz")
	}
	return c.JSON(http.StatusCreated, quiz)
}

type practiceQuizRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

func (s *Server) handlePracticeQuiz(c echo.Context) error {
	var req practiceQuizRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	req.Topic = strings.TrimSpace(req.Topic)

	questions, err := s.practice.CreateQuiz(userID(c), req.Topic, req.Count)
	if err != nil {
		if errors.Is(err, practice.ErrNotEnoughCards) {
			return jsonError(c, http.StatusBadRequest, "you need at least two flashcards with distinct answers to practice")
		}
		s.logger.Error("failed to build practice quiz", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not build practice quiz")
	}

	topic := req.Topic
	if topic == "" {
		topic = "mixed"
	}
	quiz := &models.Quiz{
		UserID:      userID(c),
		Topic:       topic,
		Description: "Practice round built from your flashcards",
		Questions:   questions,
	}
	if err := s.quizRepo.Create(quiz); err != nil {
		s.logger.Error("failed to save practice quiz", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not save practice quiz")
	}
	return c.JSON(http.StatusCreated, quiz)
}

func (s *Server) handleListQuizzes(c echo.Context) error {
	quizzes, err := s.quizRepo.ListByUser(userID(c), c.QueryParam("topic"))
	if err != nil {
		s.logger.Error("failed to list quizzes", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list quizzes")
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	return c.JSON(http.StatusOK, quizzes)
}

// getOwnQuiz loads a quiz and hides other users' quizzes behind the same
// not-found answer.
func (s *Server) getOwnQuiz(c echo.Context) (*models.Quiz, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, jsonError(c, http.StatusBadRequest, "invalid quiz id")
	}

	quiz, err := s.quizRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, jsonError(c, http.StatusNotFound, "quiz not found")
		}
		s.logger.Error("failed to load quiz", zap.Error(err))
		return nil, jsonError(c, http.StatusInternalServerError, "could not load quiz")
	}
	if quiz.UserID != userID(c) {
		return nil, jsonError(c, http.StatusNotFound, "quiz not found")
	}
	return quiz, nil
}

func (s *Server) handleGetQuiz(c echo.Context) error {
	quiz, err := s.getOwnQuiz(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quiz)
}

type submitQuizRequest struct {
	Answers          models.AnswerMap `json:"answers"`
	TimeTakenSeconds float64          `json:"time_taken_seconds"`
}

func (s *Server) handleSubmitQuiz(c echo.Context) error {
	var req submitQuizRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	uid := userID(c)

	// Submissions by the same user are serialized so two parallel
	// submits read-modify-write the topic proficiency one at a time.
	unlock := s.submitLocks.lock("user:" + strconv.FormatInt(uid, 10))
	defer unlock()

	quiz, err := s.getOwnQuiz(c)
	if err != nil {
		return err
	}

	result, err := proficiency.Score(quiz.Questions, req.Answers)
	if err != nil {
		s.logger.Error("quiz is not gradable", zap.Int64("quiz_id", quiz.ID), zap.Error(err))
		return jsonError(c, http.StatusUnprocessableEntity, "quiz contains an ungradable question")
	}

	attempt := &models.QuizAttempt{
		UserID:             uid,
		QuizID:             quiz.ID,
		Answers:            req.Answers,
		Score:              result.PercentScore,
		CorrectCount:       result.CorrectCount,
		WrongCount:         result.WrongCount,
		TimeTakenSeconds:   req.TimeTakenSeconds,
		AttemptProficiency: result.AttemptProficiency,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		s.logger.Error("failed to save attempt", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not save the attempt")
	}

	// The attempt is already recorded; a proficiency update failure is
	// logged rather than surfaced.
	topicScore := s.updateTopicProficiency(uid, quiz.Topic, result.AttemptProficiency)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"attempt":           attempt,
		"passed":            result.Passed,
		"correct":           result.Correct,
		"topic":             quiz.Topic,
		"topic_proficiency": topicScore,
	})
}

// updateTopicProficiency blends the attempt into the stored topic score
// and returns the value now on record.
func (s *Server) updateTopicProficiency(uid int64, topic string, attemptScore float64) float64 {
	var existing *float64
	row, err := s.proficiencyRepo.Get(uid, topic)
	if err == nil {
		existing = &row.Proficiency
	} else if !errors.Is(err, database.ErrNotFound) {
		s.logger.Error("failed to load topic proficiency", zap.String("topic", topic), zap.Error(err))
		return attemptScore
	}

	blended, err := proficiency.Blend(existing, attemptScore)
	if err != nil {
		s.logger.Error("failed to blend proficiency", zap.String("topic", topic), zap.Error(err))
		return attemptScore
	}
	if err := s.proficiencyRepo.Upsert(uid, topic, blended); err != nil {
		s.logger.Error("failed to save topic proficiency", zap.String("topic", topic), zap.Error(err))
	}
	return blended
}

func (s *Server) handleListAttempts(c echo.Context) error {
	quiz, err := s.getOwnQuiz(c)
	if err != nil {
		return err
	}

	attempts, err := s.attemptRepo.ListByQuiz(userID(c), quiz.ID)
	if err != nil {
		s.logger.Error("failed to list attempts", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list attempts")
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	return c.JSON(http.StatusOK, attempts)
}

func (s *Server) handleListAllAttempts(c echo.Context) error {
	attempts, err := s.attemptRepo.ListByUser(userID(c))
	if err != nil {
		s.logger.Error("failed to list attempts", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list attempts")
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	return c.JSON(http.StatusOK, attempts)
}
