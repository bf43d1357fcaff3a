package notify

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/spigell/resumebek/internal/lang"
)

func TestPhotoButton(t *testing.T) {
	t.Parallel()

	b := PhotoButton(CTA{}, 42, lang.Kazakh)
	if b.Text != lang.Text(lang.PhotoButton, lang.Kazakh) {
		t.Fatalf("unexpected button text %q", b.Text)
	}

	u, err := url.Parse(b.URL)
	if err != nil {
		t.Fatalf("invalid url %q: %v", b.URL, err)
	}
	if !strings.HasPrefix(b.URL, DefaultPhotoURL+"?") {
		t.Fatalf("expected default base url, got %q", b.URL)
	}

	q := u.Query()
	expect := map[string]string{
		"utm_source": "resumebek",
		"utm_medium": "telegram",
		"user_id":    "42",
		"lang":       "kk",
		"promo":      "STUDENT",
	}
	for k, v := range expect {
		if q.Get(k) != v {
			t.Fatalf("expected %s=%s, got %q", k, v, q.Get(k))
		}
	}
}

func TestPhotoButtonCustomConfig(t *testing.T) {
	t.Parallel()

	b := PhotoButton(CTA{URL: "https://example.com/p?ref=bot", Promo: "SPRING", UTMSource: "cli"}, 7, lang.Language("xx"))
	u, err := url.Parse(b.URL)
	if err != nil {
		t.Fatalf("invalid url %q: %v", b.URL, err)
	}

	q := u.Query()
	if q.Get("ref") != "bot" || q.Get("promo") != "SPRING" || q.Get("utm_source") != "cli" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("lang") != "ru" {
		t.Fatalf("expected unsupported language to fall back to ru, got %q", q.Get("lang"))
	}
	if b.Text != lang.Text(lang.PhotoButton, lang.Russian) {
		t.Fatalf("unexpected button text %q", b.Text)
	}
}

func TestConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf)

	ref, err := c.Send(context.Background(), 5, Message{Text: "processing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ChatID != 5 || ref.MessageID != 1 {
		t.Fatalf("unexpected ref %+v", ref)
	}

	err = c.Edit(context.Background(), ref, Message{Text: "done", Button: &Button{Text: "go", URL: "https://x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"[chat 5, message 1]\nprocessing", "[chat 5, message 1 edited]\ndone", "[go](https://x)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}

	second, err := c.Send(context.Background(), 5, Message{Text: "again"})
	if err != nil || second.MessageID != 2 {
		t.Fatalf("expected message id 2, got %+v, %v", second, err)
	}
}

func TestConsoleHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if _, err := NewConsole(&buf).Send(ctx, 1, Message{Text: "x"}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written")
	}
}
