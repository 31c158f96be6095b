package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-1")
	WithRequestID(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["user_id"] != "user-1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestNew_FallsBackOnBadLevel(t *testing.T) {
	t.Parallel()

	l, err := New(Config{Level: "loud", Encoding: "console", Service: "salon"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !l.Core().Enabled(zap.InfoLevel) || l.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected info level fallback")
	}
}
