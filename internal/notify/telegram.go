package notify

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// sender is the part of *tele.Bot used here.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram forwards messages to a Telegram chat.
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram creates a bot client for token without contacting the API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}
	bot, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Show implements Notifier. Actions are not offered remotely.
func (t *Telegram) Show(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := msg.Text
	if msg.Level == LevelError {
		text = "⚠ " + text
	}
	_, err := t.bot.Send(&tele.Chat{ID: t.chatID}, text, &tele.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return "", fmt.Errorf("telegram send: %w", err)
	}
	return "", nil
}
