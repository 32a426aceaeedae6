package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/studyhub/internal/ai"
	"github.com/example/studyhub/internal/api"
	"github.com/example/studyhub/internal/audio"
	"github.com/example/studyhub/internal/config"
	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/notify"
	"github.com/example/studyhub/internal/scheduler"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := database.Connect(cfg.DBType, cfg.DBPath, cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	generator := ai.NewGenerator(ai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, logger)
	synth := audio.NewDeepgram(cfg.DeepgramAPIKey, cfg.DeepgramVoice)

	server := api.NewServer(cfg, generator, synth, logger)

	// Reminders need a telegram bot token; without one the scheduler
	// stays off.
	var reminders *scheduler.Scheduler
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken, logger)
		if err != nil {
			logger.Warn("telegram notifier unavailable, reminders disabled", zap.Error(err))
		} else {
			reminders = scheduler.New(notifier, cfg.ReminderStartHour, cfg.ReminderEndHour, logger)
			reminders.Start()
		}
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	if reminders != nil {
		reminders.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
