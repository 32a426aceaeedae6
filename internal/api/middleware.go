package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/studyhub/internal/auth"
)

// contextKeyUserID is where authMiddleware stores the authenticated user.
const contextKeyUserID = "user_id"

// requestLogger writes one structured line per request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}

// authMiddleware rejects requests without a valid bearer token and puts
// the user id into the request context.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return jsonError(c, http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := auth.VerifyToken([]byte(s.cfg.JWTSecret), token)
		if err != nil {
			return jsonError(c, http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(contextKeyUserID, claims.UserID)
		return next(c)
	}
}

// generateRateLimit throttles the AI-backed endpoints per user.
func (s *Server) generateRateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := strconv.FormatInt(userID(c), 10)
		if !s.generateLimiter.Allow(key) {
			return jsonError(c, http.StatusTooManyRequests, "generation limit reached, try again in a minute")
		}
		return next(c)
	}
}

// RateLimiter hands out a token bucket per key.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	rpm    int
}

// NewRateLimiter creates a limiter allowing rpm requests per minute per
// key, with a burst of the same size.
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		rpm = 5
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		rpm:    rpm,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.rpm)), rl.rpm)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// keyedMutex serializes work per key. The review and submit handlers
// hold one key for the whole read-modify-write cycle so concurrent
// requests against the same row cannot interleave. Each acquisition is
// a single key, so there is no lock ordering to get wrong.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
