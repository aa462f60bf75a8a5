package fetcher

import (
	"context"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/rs/zerolog"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryExecutor runs an operation up to retries+1 times with exponential
// backoff between attempts.
type RetryExecutor struct {
	baseDelay time.Duration
	sleep     SleepFunc
	logger    zerolog.Logger
}

// NewRetryExecutor creates a retry executor with a one second base delay.
func NewRetryExecutor(logger zerolog.Logger) *RetryExecutor {
	return &RetryExecutor{
		baseDelay: time.Second,
		sleep:     contextSleep,
		logger:    logger.With().Str("component", "RetryExecutor").Logger(),
	}
}

// WithSleep replaces the function used to wait between attempts.
func (r *RetryExecutor) WithSleep(sleep SleepFunc) *RetryExecutor {
	r.sleep = sleep
	return r
}

// CalculateDelay returns the wait after the given failed attempt:
// baseDelay * 2^(attempt-1).
func (r *RetryExecutor) CalculateDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return r.baseDelay
	}
	return r.baseDelay << (attempt - 1)
}

// Do runs op until it succeeds or retries+1 attempts have failed. Terminal
// errors are returned immediately. The error of the final attempt is
// annotated with the attempt counters.
func (r *RetryExecutor) Do(ctx context.Context, url string, retries int, op func(ctx context.Context, attempt, maxAttempts int) error) error {
	if retries < 0 {
		retries = 0
	}
	maxAttempts := retries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx, attempt, maxAttempts)
		if err == nil {
			if attempt > 1 {
				r.logger.Info().Str("url", url).Int("attempt", attempt).Msg("Fetch succeeded after retry")
			}
			return nil
		}

		if checkerrors.IsTerminal(err) {
			return err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := r.CalculateDelay(attempt)
		r.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Msg("Fetch attempt failed, waiting before retry")

		if err := r.sleep(ctx, delay); err != nil {
			return checkerrors.WithAttempts(lastErr, attempt, maxAttempts)
		}
	}

	return checkerrors.WithAttempts(lastErr, maxAttempts, maxAttempts)
}
