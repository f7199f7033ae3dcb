package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForCancelled(t *testing.T) {
	release := make(chan struct{})
	original := sleep
	sleep = func(time.Duration) { <-release }
	t.Cleanup(func() {
		close(release)
		sleep = original
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForZero(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{attempt: 0, expect: time.Second},
		{attempt: 1, expect: 2 * time.Second},
		{attempt: 2, expect: 4 * time.Second},
		{attempt: 5, expect: 10 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(time.Second, 10*time.Second, tt.attempt); got != tt.expect {
			t.Fatalf("attempt %d: expected %s, got %s", tt.attempt, tt.expect, got)
		}
	}

	if got := Backoff(0, time.Second, 3); got != 0 {
		t.Fatalf("expected zero base to disable backoff, got %s", got)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"disabled":        {in: "Senior Go engineer", limit: 0, want: ""},
		"fits":            {in: "Go, Kafka", limit: 20, want: "Go, Kafka"},
		"cut":             {in: "Backend services in Python", limit: 7, want: "Backend..."},
		"trimmed first":   {in: "\n  prompt body  \n", limit: 6, want: "prompt..."},
		"runes not bytes": {in: "Bengaluru – Pune", limit: 11, want: "Bengaluru –..."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.in, tt.limit); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	got, cut := Truncate("résumé text", 6)
	if got != "résumé" || !cut {
		t.Fatalf("expected rune-safe prefix, got %q (cut=%v)", got, cut)
	}

	got, cut = Truncate("short", 10)
	if got != "short" || cut {
		t.Fatalf("expected unchanged input, got %q (cut=%v)", got, cut)
	}

	got, cut = Truncate("unbounded", 0)
	if got != "unbounded" || cut {
		t.Fatalf("expected zero limit to disable truncation, got %q (cut=%v)", got, cut)
	}
}
