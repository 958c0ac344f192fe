package openai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestComposeReminderFallback(t *testing.T) {
	t.Parallel()
	c := New("")

	got, err := c.ComposeReminder(context.Background(), ReminderContext{
		ProfileName: "Maya",
		Title:       "Call about the move",
		Description: "She starts the new job on Monday",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Call about the move (Maya): She starts the new job on Monday"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if _, err := c.ComposeReminder(context.Background(), ReminderContext{}); err == nil {
		t.Fatalf("expected error for empty title")
	}
}

func TestSummarizeNotesFallback(t *testing.T) {
	t.Parallel()
	c := New("")
	content := strings.Repeat("Lorem ipsum dolor sit amet. ", 10)

	summary, err := c.SummarizeNotes(context.Background(), content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(summary, "...") || len([]rune(summary)) != 83 {
		t.Fatalf("expected truncated fallback summary, got %q", summary)
	}

	if _, err := c.SummarizeNotes(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty notes")
	}
}

func TestCompleteWithoutClient(t *testing.T) {
	t.Parallel()

	_, err := New("").complete(context.Background(), "s", "u", 0, 1, 0)
	if !errors.Is(err, ErrClientNotInitialised) {
		t.Fatalf("expected ErrClientNotInitialised, got %v", err)
	}
	if New("").Enabled() {
		t.Fatalf("client without key reported enabled")
	}
}
