package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManager_ShutdownOrderAndErrors(t *testing.T) {
	t.Parallel()

	m := New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("db", func(context.Context) error { order = append(order, "db"); return nil })
	m.Register("hub", func(context.Context) error { order = append(order, "hub"); return boom })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })
	m.Register("nil", nil)

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined hook error, got %v", err)
	}
	want := []string{"http", "hub", "db"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("expected second shutdown to be a no-op, got %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("expected hooks to run once, got %v", order)
	}
}

func TestManager_HooksSeeDeadline(t *testing.T) {
	t.Parallel()

	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("missing deadline")
		}
		<-ctx.Done()
		return nil
	})
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestManager_ListenCancel(t *testing.T) {
	t.Parallel()

	m := New(time.Second, nil)
	ctx, cancel := m.Listen(context.Background())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected context cancelled")
	}
}
