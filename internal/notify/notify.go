// Package notify sends "scrape complete" and error alerts.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a short alert. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Nop discards every alert.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }

// Telegram posts alerts to a single chat through a bot.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authenticates the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithClient(token, tgbotapi.APIEndpoint, chatID, &http.Client{})
}

// NewTelegramWithClient is NewTelegram with an explicit API endpoint
// format ("…/bot%s/%s") and HTTP client.
func NewTelegramWithClient(token, endpoint string, chatID int64, hc *http.Client) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, format(subject, body))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func format(subject, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return subject
	}
	return subject + "\n\n" + body
}
