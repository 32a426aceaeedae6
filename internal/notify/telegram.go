// Package notify delivers study reminders to users over Telegram.
package notify

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/studyhub/pkg/models"
)

// Notifier sends a due-cards reminder to a user.
type Notifier interface {
	SendReminder(user *models.User, dueCount int) error
}

// ErrNoChat is returned when the user has not linked a Telegram chat.
var ErrNoChat = errors.New("notify: user has no telegram chat id")

// Telegram sends reminders through the Telegram Bot API.
type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegram authorizes the bot with the given token.
func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	logger.Info("telegram notifier authorized", zap.String("account", botAPI.Self.UserName))

	return &Telegram{api: botAPI, logger: logger}, nil
}

// SendReminder implements the Notifier interface.
func (t *Telegram) SendReminder(user *models.User, dueCount int) error {
	if user.TelegramChatID == 0 {
		return ErrNoChat
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, reminderText(dueCount))
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Warn("failed to send reminder",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return err
	}

	t.logger.Info("sent study reminder",
		zap.Int64("user_id", user.ID),
		zap.Int("due_cards", dueCount))
	return nil
}

func reminderText(count int) string {
	if count == 1 {
		return "You have 1 flashcard due for review. A short session now keeps it fresh!"
	}
	return fmt.Sprintf("You have %d flashcards due for review. A short session now keeps them fresh!", count)
}
