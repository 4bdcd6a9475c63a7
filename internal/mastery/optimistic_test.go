package mastery

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/recallery/recallery-backend/internal/pkg/errors"
)

func TestRetryOptimisticStopsOnFirstApply(t *testing.T) {
	calls := 0
	err := RetryOptimistic(context.Background(), 3, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("RetryOptimistic: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryOptimisticRetriesLostRaces(t *testing.T) {
	calls := 0
	err := RetryOptimistic(context.Background(), 3, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("RetryOptimistic: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryOptimisticExhaustion(t *testing.T) {
	calls := 0
	err := RetryOptimistic(context.Background(), 3, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, pkgerrors.ErrConcurrencyExhausted) {
		t.Fatalf("err = %v, want ErrConcurrencyExhausted", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want the full attempt budget", calls)
	}
}

func TestRetryOptimisticPropagatesAttemptError(t *testing.T) {
	boom := errors.New("write timeout")
	calls := 0
	err := RetryOptimistic(context.Background(), 3, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the attempt error", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, attempt errors must not be retried", calls)
	}
}

func TestRetryOptimisticHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryOptimistic(ctx, 3, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want none after cancellation", calls)
	}
}

func TestRetryOptimisticNormalizesAttemptBudget(t *testing.T) {
	calls := 0
	err := RetryOptimistic(context.Background(), 0, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("RetryOptimistic: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want a floor of one attempt", calls)
	}
}
