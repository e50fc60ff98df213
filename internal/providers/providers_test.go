package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"heat-alert-service/internal/logging"
)

func TestTemplateTextUsesPromptValues(t *testing.T) {
	prompt := "Create a short, urgent voice alert. This is alert number 3 of 5. The current temperature is 85.5 degrees Fahrenheit."
	text, err := TemplateText{}.Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"This is an urgent safety alert.", "Alert 3 of 5", "85.5 degrees"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestTemplateTextRejectsUnknownPrompt(t *testing.T) {
	if _, err := (TemplateText{}).Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTelegramMirrorRetries(t *testing.T) {
	calls := 0
	m := &TelegramMirror{
		token:   "token",
		chatID:  42,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logging.NewDiscard(),
		send: func(_ context.Context, _ string, chatID int64, text string) error {
			calls++
			if chatID != 42 || text != "hot" {
				t.Errorf("unexpected send args: %d %q", chatID, text)
			}
			if calls == 1 {
				return errors.New("flaky")
			}
			return nil
		},
	}
	if err := m.Post(context.Background(), "hot"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}
