package utils

import (
	"context"
	"fmt"
	"time"

	"heat-alert-service/internal/logging"
)

// Retry runs fn up to maxAttempts times, sleeping delay between failures.
func Retry(ctx context.Context, logger *logging.Logger, maxAttempts int, delay time.Duration, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(ctx); err != nil {
			lastErr = err
			logger.Warnf("Attempt %d/%d failed: %v", attempt, maxAttempts, err)
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, ctx.Err())
				case <-time.After(delay):
				}
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
