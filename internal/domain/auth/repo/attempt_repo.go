package repo

import (
	"context"
	"time"
)

// AttemptRepo counts login attempts per key within a window that starts at the first attempt.
type AttemptRepo interface {
	// RegisterAttempt counts one more attempt and returns the total in the current window.
	RegisterAttempt(ctx context.Context, key string, window time.Duration) (int64, error)

	Reset(ctx context.Context, key string) error
}
