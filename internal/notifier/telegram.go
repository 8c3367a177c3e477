package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrEmptyToken = errors.New("telegram token is empty")

// TelegramSender sends messages through the Bot API.
type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramSender{bot: b}, nil
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})

	return err
}
