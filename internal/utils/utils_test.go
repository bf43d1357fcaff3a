package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	saved := after
	defer func() { after = saved }()

	var waited time.Duration
	after = func(d time.Duration) <-chan time.Time {
		waited = d
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	if err := WaitFor(context.Background(), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != time.Hour {
		t.Fatalf("expected to wait an hour, waited %v", waited)
	}

	after = func(time.Duration) <-chan time.Time { return nil }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}

	if err := WaitFor(context.Background(), -time.Second); err != nil {
		t.Fatalf("expected immediate return for non-positive duration, got %v", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "no limit", input: "hello", limit: 0, expect: "hello"},
		{name: "shorter", input: "hi", limit: 5, expect: "hi"},
		{name: "exact", input: "hello", limit: 5, expect: "hello"},
		{name: "cyrillic", input: "привет", limit: 3, expect: "при"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestWordBoundaryAt(t *testing.T) {
	t.Parallel()

	s := "тел: +7"
	if !WordBoundaryAt(s, 0) {
		t.Fatalf("expected boundary at start of a word")
	}
	if WordBoundaryAt(s, len("т")) {
		t.Fatalf("expected no boundary inside a cyrillic word")
	}
	if !WordBoundaryAt(s, len("тел")) {
		t.Fatalf("expected boundary at end of a word")
	}
	if WordBoundaryAt(" ", 0) {
		t.Fatalf("expected no boundary between non-word characters")
	}
}
