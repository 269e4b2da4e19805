package util

import (
	"context"
	"time"
)

// Retry runs fn up to max+1 times with exponential backoff between attempts,
// honoring ctx cancellation both before an attempt and while waiting.
func Retry(ctx context.Context, max int, backoff time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt >= max {
			return lastErr
		}
		wait := backoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
