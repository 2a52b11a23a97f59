// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-15
// Last Modified: 2026-10-16

// Package retry provides exponential backoff for calls to external services.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config holds configuration for exponential backoff retry.
type Config struct {
	MaxRetries  int           // Maximum number of retry attempts
	BaseDelay   time.Duration // Initial delay before first retry
	MaxDelay    time.Duration // Maximum delay cap
	JitterRatio float64       // Jitter as fraction of delay, 0.0-1.0
}

// DefaultConfig returns defaults for prediction and tracker calls.
// Defaults: 2 retries, 1s base delay, 10s max delay, 25% jitter.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  2,
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
		JitterRatio: 0.25,
	}
}

// Do executes fn with exponential backoff. It retries only when retryable
// reports true for the returned error. Non-retryable errors are returned
// immediately.
func Do[T any](ctx context.Context, cfg Config, operation string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if retryable == nil || !retryable(err) {
			return zero, err
		}

		if attempt == cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		// base * 2^attempt, plus jitter, capped.
		delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt)))
		if cfg.JitterRatio > 0 {
			delay += time.Duration(rand.Float64() * cfg.JitterRatio * float64(delay))
		}
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%s: context cancelled during retry: %w", operation, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("%s: retry loop exited unexpectedly", operation)
}
