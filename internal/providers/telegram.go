package providers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/utils"
	"heat-alert-service/pkg/telegram"
)

// TelegramMirror posts generated alert text to a chat.
type TelegramMirror struct {
	token   string
	chatID  int64
	limiter *rate.Limiter
	logger  *logging.Logger
	send    func(ctx context.Context, token string, chatID int64, text string) error
}

func NewTelegramMirror(token string, chatID int64, ratePerSecond int, logger *logging.Logger) *TelegramMirror {
	if ratePerSecond < 1 {
		ratePerSecond = 1
	}
	return &TelegramMirror{
		token:   token,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		logger:  logger,
		send:    telegram.Send,
	}
}

// Post sends text, waiting for the rate limiter and retrying transient failures.
func (t *TelegramMirror) Post(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit wait: %w", err)
	}
	return utils.Retry(ctx, t.logger, 3, time.Second, func(ctx context.Context) error {
		return t.send(ctx, t.token, t.chatID, text)
	})
}
