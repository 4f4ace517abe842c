package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Config configures the exponential backoff retry behavior. Attempts
// is the number of retries after the initial try, so an operation runs
// at most Attempts+1 times.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultConfig returns sensible defaults for remote API retry.
func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		BaseDelay: time.Second,
	}
}

// IsTransient checks if an error is likely due to a temporary network
// condition. Authentication and validation errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	var dnsErr *net.DNSError
	if errors.As(err, &netErr) || errors.As(err, &dnsErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"i/o timeout",
		"network",
		"no route to host",
		"host is down",
		"temporary failure in name resolution",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// Do executes fn, retrying with exponential backoff while retryable
// accepts the error and attempts remain. A nil retryable defaults to
// IsTransient. The last error is returned unchanged after exhaustion.
func Do(ctx context.Context, name string, cfg Config, retryable func(error) bool, fn func() error, logger *zerolog.Logger) error {
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.Attempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info().Str("operation", name).Int("attempt", attempt+1).Msg("operation succeeded after retry")
			}
			return nil
		}

		lastErr = err

		if !retryable(err) {
			logger.Debug().Err(err).Str("operation", name).Msg("error not retryable")
			return err
		}

		if attempt == cfg.Attempts {
			break
		}

		delay := backoffDelay(cfg.BaseDelay, attempt)
		logger.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt+1).
			Int("maxAttempts", cfg.Attempts+1).
			Dur("nextRetryIn", delay).
			Msg("transient error, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Error().Err(lastErr).Str("operation", name).Int("attempts", cfg.Attempts+1).
		Msg("operation failed after all retries")
	return lastErr
}

// backoffDelay is base x 2^attempt plus up to 10% random jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	delay := base << uint(attempt)
	jitter := time.Duration(rand.Int63n(int64(delay)/10 + 1))
	return delay + jitter
}
