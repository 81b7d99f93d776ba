// Package retry waits out startup dependencies such as the redis session
// store. Requests to the backend are never retried.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/dei-tracker/web/pkg/logger"
)

type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
	// Name labels log lines, e.g. "redis".
	Name string
}

func DefaultConfig(name string) Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		JitterFraction: 0.1,
		Name:           name,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a Permanent error, the attempts run
// out or ctx ends. The delay doubles after each failure up to MaxDelay.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}

	delay := cfg.InitialDelay
	var err error

	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			if attempt > 1 {
				logger.Info("Dependency became available", zap.String("name", cfg.Name), zap.Int("attempt", attempt))
			}
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= cfg.MaxAttempts {
			return err
		}

		logger.Warn("Dependency unavailable, retrying",
			zap.String("name", cfg.Name),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(addJitter(delay, cfg.JitterFraction))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	jitter := time.Duration(rand.Float64() * float64(d) * fraction)
	if rand.Intn(2) == 0 {
		return d - jitter
	}
	return d + jitter
}
