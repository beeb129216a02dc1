package lifecycle

import (
	"context"
	"errors"
	"testing"
)

func TestShutdown_ReverseOrderAndErrors(t *testing.T) {
	m := New(0, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Closer("second", func() error {
		order = append(order, "second")
		return boom
	})
	m.Register("third", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected hooks to receive a deadline")
		}
		order = append(order, "third")
		return nil
	})
	m.Register("ignored", nil)

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined hook error, got %v", err)
	}

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Errorf("expected second shutdown to be a no-op, got %v", err)
	}
	if len(order) != len(want) {
		t.Errorf("expected hooks to run once, got %v", order)
	}
}
