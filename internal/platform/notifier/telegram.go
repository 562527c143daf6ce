package notifier

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends notifications to a fixed chat via the Telegram Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegram connects the bot. Returns an error when the token is rejected,
// so callers can fall back to the Noop notifier.
func NewTelegram(token string, chatID int64, logger *slog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

var _ Notifier = (*Telegram)(nil)

func (t *Telegram) NotifyClockEvent(userName, orgName, transition string) {
	t.send(fmt.Sprintf("🕒 %s: %s (%s)", userName, transition, orgName))
}

func (t *Telegram) NotifyOTP(email, code, otpType string) {
	t.send(fmt.Sprintf("🔑 OTP for %s (%s): %s", email, otpType, code))
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("Failed to send telegram notification", slog.String("error", err.Error()))
	}
}
