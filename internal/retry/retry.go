package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"rently/internal/providers"
)

// Policy is the single reusable retry strategy: bounded attempts with
// linear backoff (attempt * BaseDelay), applied only to errors the
// classifier marks as retryable.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Classify    func(error) bool
	Logger      providers.Logger
}

func NewPolicy(maxAttempts int, baseDelay time.Duration, logger providers.Logger) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Classify:    Transient,
		Logger:      logger,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent.
func (p *Policy) Do(ctx context.Context, name string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Classify != nil && !p.Classify(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := time.Duration(attempt) * p.BaseDelay
		if p.Logger != nil {
			p.Logger.Warnf(providers.TypeApp, "%s failed (attempt %d/%d): %s, retrying in %s",
				name, attempt, p.MaxAttempts, lastErr, delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, p.MaxAttempts, lastErr)
}

// Transient reports whether an error looks like a network-class failure
// worth retrying.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, context.DeadlineExceeded)
}
