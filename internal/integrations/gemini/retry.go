// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-15
// Last Modified: 2026-10-16

package gemini

import (
	"context"
	"errors"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/similigh/mailbox-monitor/internal/utils/retry"
)

// RetryConfig holds configuration for exponential backoff retry.
type RetryConfig = retry.Config

// DefaultRetryConfig returns sensible defaults for Gemini API retries.
// Defaults: 5 retries, 1s base delay, 60s max delay, 25% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    60 * time.Second,
		JitterRatio: 0.25,
	}
}

// isRetryableError reports whether err is a transient Gemini API error that
// warrants a retry. It uses typed checking rather than string matching:
//   - REST transport errors are checked via *googleapi.Error (HTTP 429 / 5xx).
//   - gRPC transport errors are checked via gRPC status codes
//     (ResourceExhausted, Unavailable, Internal).
//
// Client errors (4xx other than 429) are not retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// REST transport: google.golang.org/api returns *googleapi.Error.
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || (gerr.Code >= 500 && gerr.Code < 600)
	}

	// gRPC transport: generative-ai-go can return gRPC status errors.
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.Internal:
			return true
		}
	}

	return false
}

// withRetry executes fn with exponential backoff, retrying only transient
// Gemini errors (429 / 5xx).
func withRetry[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, error)) (T, error) {
	return retry.Do(ctx, cfg, operation, isRetryableError, fn)
}
