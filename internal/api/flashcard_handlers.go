package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/excel"
	"github.com/example/studyhub/internal/srs"
	"github.com/example/studyhub/pkg/models"
)

type generateFlashcardsRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

func (s *Server) handleGenerateFlashcards(c echo.Context) error {
	var req generateFlashcardsRequest
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

	generated, err := s.generator.GenerateFlashcards(c.Request().Context(), req.Topic, req.Count)
	if err != nil {
		s.logger.Error("flashcard generation failed", zap.String("topic", req.Topic), zap.Error(err))
		return jsonError(c, http.StatusBadGateway, "generation failed, please try again")
	}

	uid := userID(c)
	now := time.Now().UTC()
	batch := make([]models.Flashcard, 0, len(generated))
	for _, card := range generated {
		batch = append(batch, models.Flashcard{
			UserID:      uid,
			Topic:       req.Topic,
			Front:       card.Front,
			Back:        card.Back,
			Difficulty:  card.Difficulty,
			Explanation: card.Explanation,
			ReviewState: srs.NewReviewState(now),
		})
	}

	created, err := s.flashcardRepo.CreateBatch(batch)
	if err != nil {
		s.logger.Error("failed to save generated flashcards", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not save flashcards")
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleImportFlashcards(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "could not read the uploaded file")
	}
	defer src.Close()

	// The spreadsheet readers work on paths, so spool the upload to a
	// temp file first.
	tmp, err := os.CreateTemp("", "deck-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		s.logger.Error("failed to create temp file", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not import the file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		s.logger.Error("failed to spool upload", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not import the file")
	}
	tmp.Close()

	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = tmp.Name()
	importCfg.Topic = strings.TrimSpace(c.FormValue("topic"))
	if sheet := c.FormValue("sheet"); sheet != "" {
		importCfg.SheetName = sheet
	}

	result, err := excel.ImportDeck(userID(c), importCfg)
	if err != nil {
		s.logger.Warn("deck import failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "could not read the file as a flashcard deck")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleListFlashcards(c echo.Context) error {
	filter := database.ListFilter{
		Topic:      c.QueryParam("topic"),
		Difficulty: c.QueryParam("difficulty"),
	}
	due := c.QueryParam("due") == "true"
	if due {
		filter.DueOnly = true
		filter.Now = time.Now().UTC()
	}

	cards, err := s.flashcardRepo.ListByUser(userID(c), filter)
	if err != nil {
		s.logger.Error("failed to list flashcards", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list flashcards")
	}
	if due {
		// Most overdue first, then the shakiest cards.
		srs.SortDue(cards)
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return c.JSON(http.StatusOK, cards)
}

func (s *Server) handleListTopics(c echo.Context) error {
	topics, err := s.flashcardRepo.Topics(userID(c))
	if err != nil {
		s.logger.Error("failed to list topics", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not list topics")
	}
	if topics == nil {
		topics = []models.TopicCount{}
	}
	return c.JSON(http.StatusOK, topics)
}

// getOwnFlashcard loads a card and hides other users' cards behind the
// same not-found answer.
func (s *Server) getOwnFlashcard(c echo.Context) (*models.Flashcard, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, jsonError(c, http.StatusBadRequest, "invalid flashcard id")
	}

	card, err := s.flashcardRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, jsonError(c, http.StatusNotFound, "flashcard not found")
		}
		s.logger.Error("failed to load flashcard", zap.Error(err))
		return nil, jsonError(c, http.StatusInternalServerError, "could not load flashcard")
	}
	if card.UserID != userID(c) {
		return nil, jsonError(c, http.StatusNotFound, "flashcard not found")
	}
	return card, nil
}

func (s *Server) handleGetFlashcard(c echo.Context) error {
	card, err := s.getOwnFlashcard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

type updateFlashcardRequest struct {
	Topic       *string `json:"topic"`
	Front       *string `json:"front"`
	Back        *string `json:"back"`
	Difficulty  *string `json:"difficulty"`
	Explanation *string `json:"explanation"`
}

func (s *Server) handleUpdateFlashcard(c echo.Context) error {
	var req updateFlashcardRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	card, err := s.getOwnFlashcard(c)
	if err != nil {
		return err
	}

	if req.Topic != nil && strings.TrimSpace(*req.Topic) != "" {
		card.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.Front != nil && strings.TrimSpace(*req.Front) != "" {
		card.Front = *req.Front
	}
	if req.Back != nil && strings.TrimSpace(*req.Back) != "" {
		card.Back = *req.Back
	}
	if req.Difficulty != nil {
		card.Difficulty = normalizeDifficulty(*req.Difficulty)
	}
	if req.Explanation != nil {
		card.Explanation = *req.Explanation
	}

	if err := s.flashcardRepo.Update(card); err != nil {
		s.logger.Error("failed to update flashcard", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not update flashcard")
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(c echo.Context) error {
	card, err := s.getOwnFlashcard(c)
	if err != nil {
		return err
	}
	if err := s.flashcardRepo.Delete(card.ID); err != nil {
		s.logger.Error("failed to delete flashcard", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not delete flashcard")
	}
	return c.NoContent(http.StatusNoContent)
}

type reviewRequest struct {
	Confidence int `json:"confidence"`
}

func (s *Server) handleReviewFlashcard(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid flashcard id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	// Reviews of the same card are serialized so two graders cannot
	// both read the old state and overwrite each other.
	unlock := s.reviewLocks.lock("card:" + strconv.FormatInt(id, 10))
	defer unlock()

	card, err := s.getOwnFlashcard(c)
	if err != nil {
		return err
	}

	next, err := srs.Schedule(card.ReviewState, req.Confidence, time.Now().UTC())
	if err != nil {
		if errors.Is(err, srs.ErrInvalidConfidence) {
			return jsonError(c, http.StatusBadRequest, "confidence must be between 1 and 5")
		}
		s.logger.Error("failed to schedule review", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not record review")
	}

	if err := s.flashcardRepo.UpdateReviewState(card.ID, next); err != nil {
		s.logger.Error("failed to save review state", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not record review")
	}

	card.ReviewState = next
	return c.JSON(http.StatusOK, card)
}

// normalizeDifficulty folds free-form difficulty input onto the three
// levels used everywhere else.
func normalizeDifficulty(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}
