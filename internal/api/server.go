// Package api exposes the HTTP surface of the service: auth, profile,
// flashcards, quizzes, and lessons.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/ai"
	"github.com/example/studyhub/internal/audio"
	"github.com/example/studyhub/internal/config"
	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/practice"
)

// Server wires the HTTP routes to the application services.
type Server struct {
	echo      *echo.Echo
	cfg       config.Config
	logger    *zap.Logger
	generator *ai.Generator
	synth     audio.Synthesizer
	practice  *practice.Module

	userRepo        *database.UserRepository
	flashcardRepo   *database.FlashcardRepository
	proficiencyRepo *database.ProficiencyRepository
	quizRepo        *database.QuizRepository
	attemptRepo     *database.AttemptRepository
	lessonRepo      *database.LessonRepository

	generateLimiter *RateLimiter
	reviewLocks     *keyedMutex
	submitLocks     *keyedMutex
}

// NewServer builds the echo app with middleware and routes attached.
func NewServer(cfg config.Config, generator *ai.Generator, synth audio.Synthesizer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		generator: generator,
		synth:     synth,
		practice:  practice.NewModule(),

		userRepo:        database.NewUserRepository(),
		flashcardRepo:   database.NewFlashcardRepository(),
		proficiencyRepo: database.NewProficiencyRepository(),
		quizRepo:        database.NewQuizRepository(),
		attemptRepo:     database.NewAttemptRepository(),
		lessonRepo:      database.NewLessonRepository(),

		generateLimiter: NewRateLimiter(cfg.GenerateRPM),
		reviewLocks:     newKeyedMutex(),
		submitLocks:     newKeyedMutex(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(s.requestLogger)

	s.echo = e
	s.RegisterRoutes(e)
	return s
}

// RegisterRoutes attaches every route to the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.Static("/audio", s.cfg.AudioDir)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)

	protected := api.Group("", s.authMiddleware)

	users := protected.Group("/users")
	users.GET("/me", s.handleGetMe)
	users.PUT("/me", s.handleUpdateMe)
	users.GET("/me/proficiency", s.handleGetProficiency)
	users.GET("/me/stats", s.handleGetStats)

	cards := protected.Group("/flashcards")
	cards.POST("/generate", s.handleGenerateFlashcards, s.generateRateLimit)
	cards.POST("/import", s.handleImportFlashcards)
	cards.GET("", s.handleListFlashcards)
	cards.GET("/topics", s.handleListTopics)
	cards.GET("/:id", s.handleGetFlashcard)
	cards.PUT("/:id", s.handleUpdateFlashcard)
	cards.DELETE("/:id", s.handleDeleteFlashcard)
	cards.POST("/:id/review", s.handleReviewFlashcard)

	quizzes := protected.Group("/quizzes")
	quizzes.POST("/generate", s.handleGenerateQuiz, s.generateRateLimit)
	quizzes.POST("/practice", s.handlePracticeQuiz)
	quizzes.GET("", s.handleListQuizzes)
	quizzes.GET("/attempts", s.handleListAllAttempts)
	quizzes.GET("/:id", s.handleGetQuiz)
	quizzes.POST("/:id/submit", s.handleSubmitQuiz)
	quizzes.GET("/:id/attempts", s.handleListAttempts)

	lessons := protected.Group("/lessons")
	lessons.POST("/generate", s.handleGenerateLesson, s.generateRateLimit)
	lessons.GET("", s.handleListLessons)
	lessons.GET("/:id", s.handleGetLesson)
}

// Start serves on the configured address and blocks until shutdown.
func (s *Server) Start() error {
	return s.echo.Start(s.cfg.HTTPAddr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := database.DB.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// jsonError writes the uniform error payload.
func jsonError(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}

// userID returns the authenticated user's id set by authMiddleware.
func userID(c echo.Context) int64 {
	id, _ := c.Get(contextKeyUserID).(int64)
	return id
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
