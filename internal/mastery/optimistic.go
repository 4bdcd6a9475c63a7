package mastery

import (
	"context"
	"fmt"

	pkgerrors "github.com/recallery/recallery-backend/internal/pkg/errors"
)

// Attempt runs one read-compute-conditional-write cycle. It returns true when
// the write was applied, false when another writer won the version race. Any
// error is a transport failure and aborts the whole loop.
type Attempt func(ctx context.Context) (applied bool, err error)

// RetryOptimistic runs attempt until it applies, up to maxAttempts cycles.
// Each cycle re-reads fresh state; no lock is held between cycles. When every
// attempt loses the race the returned error wraps ErrConcurrencyExhausted.
func RetryOptimistic(ctx context.Context, maxAttempts int, attempt Attempt) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		applied, err := attempt(ctx)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("optimistic write lost the version race %d times: %w",
		maxAttempts, pkgerrors.ErrConcurrencyExhausted)
}
