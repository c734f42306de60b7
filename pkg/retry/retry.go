package retry

import (
	"context"
	"time"
)

// Config controls the retry schedule.
type Config struct {
	Attempts     int           // total attempts, including the first
	InitialDelay time.Duration // delay before the second attempt
	Factor       float64       // multiplier applied to the delay after each attempt
}

// DefaultConfig is the schedule used for LLM calls: 3 attempts with
// exponential backoff (1s, 2s between attempts).
func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		InitialDelay: time.Second,
		Factor:       2,
	}
}

// Do runs fn up to cfg.Attempts times, sleeping between attempts with
// exponential backoff. Attempts are strictly sequential. A cancelled context
// aborts the wait and returns ctx.Err(); the last fn error is returned once
// the budget is exhausted.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Factor <= 0 {
		cfg.Factor = 2
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * cfg.Factor)
		}

		if err := fn(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}
