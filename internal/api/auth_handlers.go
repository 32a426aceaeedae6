package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/studyhub/internal/auth"
	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/pkg/models"
)

type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	GradeLevel string `json:"grade_level"`
	Hobby      string `json:"hobby"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return jsonError(c, http.StatusBadRequest, "a valid email is required")
	}
	if req.Username == "" {
		return jsonError(c, http.StatusBadRequest, "username is required")
	}
	if len(req.Password) < 8 {
		return jsonError(c, http.StatusBadRequest, "password must be at least 8 characters")
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not create user")
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		GradeLevel:   req.GradeLevel,
		Hobby:        req.Hobby,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return jsonError(c, http.StatusConflict, "email or username is already taken")
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not create user")
	}

	token, err := auth.CreateToken([]byte(s.cfg.JWTSecret), user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not create session")
	}

	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	// A wrong email and a wrong password answer identically so the
	// endpoint cannot be used to probe which emails are registered.
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusUnauthorized, "invalid email or password")
		}
		s.logger.Error("failed to look up user", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not log in")
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return jsonError(c, http.StatusUnauthorized, "invalid email or password")
	}

	token, err := auth.CreateToken([]byte(s.cfg.JWTSecret), user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "could not create session")
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
