package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends events as chat messages.
type Telegram struct {
	bot    telegramSender
	chatID int64
}

// NewTelegram authenticates with token and targets chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends ev as a plain-text message.
func (t *Telegram) Notify(_ context.Context, ev Event) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatText(ev))
	msg.DisableNotification = ev.Type == EventExpenseAdded || ev.Type == EventExpenseRemoved
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *Telegram) Close() error { return nil }
