package notifier

import (
	"context"
	"sync"

	apperrors "swecron/pkg/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMaxMessage is the longest text message Telegram accepts, in characters
const TelegramMaxMessage = 4096

// Telegram sends plain text messages to one chat
type Telegram struct {
	token    string
	chatID   int64
	endpoint string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram notifier. The bot is connected on first use.
func NewTelegram(token string, chatID int64) *Telegram {
	return &Telegram{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
	}
}

// Name returns "telegram"
func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) connect() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(t.token, t.endpoint)
	if err != nil {
		return nil, err
	}
	t.bot = bot
	return bot, nil
}

// Notify sends message without any parse mode so titles are shown verbatim
func (t *Telegram) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewNotification(t.Name(), "cancelled", err)
	}

	bot, err := t.connect()
	if err != nil {
		return apperrors.NewNotification(t.Name(), "failed to init telegram bot", err)
	}

	msg := tgbotapi.NewMessage(t.chatID, truncate(message, TelegramMaxMessage))
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return apperrors.NewNotification(t.Name(), "send failed", err)
	}
	return nil
}
