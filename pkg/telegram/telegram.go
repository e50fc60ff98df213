package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Send posts message to a single chat.
func Send(ctx context.Context, token string, chatID int64, message string) error {
	b, err := bot.New(token)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send to chat_id %d: %w", chatID, err)
	}
	return nil
}
