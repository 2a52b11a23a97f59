// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-15
// Last Modified: 2026-10-16

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func fastConfig(retries int) Config {
	return Config{MaxRetries: retries, BaseDelay: 1 * time.Millisecond, MaxDelay: 10 * time.Millisecond, JitterRatio: 0}
}

func TestDo_Success(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(3), "test", isTransient, func() (string, error) {
		calls++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("got %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(3), "test", isTransient, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("got %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonRetryableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(3), "test", isTransient, func() (string, error) {
		calls++
		return "", errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_NilPredicateNeverRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(3), "test", nil, func() (int, error) {
		calls++
		return 0, errTransient
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ExhaustedRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), "test-op", isTransient, func() (string, error) {
		calls++
		return "", errTransient
	})

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("expected wrapped transient error, got %v", err)
	}
	// 1 initial + 2 retries = 3
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	cfg := Config{MaxRetries: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 1 * time.Second, JitterRatio: 0}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, "test", isTransient, func() (string, error) {
		return "", errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
