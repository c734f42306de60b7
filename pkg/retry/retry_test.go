package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-assistant-nlu/pkg/retry"
)

func TestDo(t *testing.T) {
	cfg := retry.Config{Attempts: 3, InitialDelay: time.Millisecond, Factor: 2}

	t.Run("Succeeds First Attempt", func(t *testing.T) {
		calls := 0
		err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("Succeeds After Failures", func(t *testing.T) {
		calls := 0
		err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("Exhausts Budget", func(t *testing.T) {
		wantErr := errors.New("permanent")
		calls := 0
		err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("expected %v, got %v", wantErr, err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("Context Cancelled During Backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := retry.Do(ctx, retry.Config{Attempts: 3, InitialDelay: time.Minute, Factor: 2}, func(ctx context.Context) error {
			cancel()
			return errors.New("fail once")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Zero Attempts Runs Once", func(t *testing.T) {
		calls := 0
		_ = retry.Do(context.Background(), retry.Config{}, func(ctx context.Context) error {
			calls++
			return nil
		})
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})
}
