package util

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryPermanent(t *testing.T) {
	notFound := errors.New("not found")
	attempts := 0

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		return Permanent(notFound)
	})

	if !errors.Is(err, notFound) {
		t.Errorf("Retry error = %v, want %v", err, notFound)
	}
	if attempts != 1 {
		t.Errorf("Retry called fn %d times, want 1", attempts)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return errors.New("transient error")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	if !rl.Allow() || !rl.Allow() {
		t.Fatal("first two tokens should be available")
	}
	if rl.Allow() {
		t.Error("third token should not be available immediately")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !rl.Allow() {
			t.Fatalf("Allow() = false on call %d, want unlimited", i)
		}
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerToFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "info", "json").Info("hello", "season", "2025")
	if !strings.Contains(buf.String(), `"season":"2025"`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	NewLoggerTo(&buf, "info", "text").Info("hello", "season", "2025")
	if !strings.Contains(buf.String(), "season=2025") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	NewLoggerTo(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info below warn level should be dropped, got %q", buf.String())
	}
}

func TestLoadLocationFallback(t *testing.T) {
	if loc := LoadLocation("Not/AZone"); loc != time.UTC {
		t.Errorf("LoadLocation(bad) = %v, want UTC", loc)
	}
}
