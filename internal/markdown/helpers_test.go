package markdown_test

import (
	"ringkas/internal/markdown"
	"strings"
	"testing"
)

func TestEscapeV2(t *testing.T) {
	got := markdown.EscapeV2("ROUGE-1: 0.41 (n=10)!")
	want := `ROUGE\-1: 0\.41 \(n\=10\)\!`

	if got != want {
		t.Fatalf("unexpected escaped text: got %q want %q", got, want)
	}

	if got := markdown.EscapeV2("berita"); got != "berita" {
		t.Fatalf("expected plain text unchanged, got %q", got)
	}
}

func TestBold(t *testing.T) {
	if got := markdown.Bold("a.b"); got != `*a\.b*` {
		t.Fatalf("unexpected bold text: %q", got)
	}
}

func TestSplitKeepsBlocksTogether(t *testing.T) {
	blocks := []string{"aaaa\n", "bbbb\n", "cccc\n"}

	messages := markdown.Split("H\n", "C\n", blocks, 12)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %q", messages)
	}

	if messages[0] != "H\naaaa\nbbbb\n" {
		t.Fatalf("unexpected first message: %q", messages[0])
	}

	if messages[1] != "C\ncccc\n" {
		t.Fatalf("unexpected continued message: %q", messages[1])
	}
}

func TestSplitRespectsLimit(t *testing.T) {
	long := strings.Repeat("é", 50)

	messages := markdown.Split("H\n", "", []string{long}, 20)
	if len(messages) < 2 {
		t.Fatalf("expected long block to be cut, got %q", messages)
	}

	var joined strings.Builder
	for _, m := range messages {
		if len(m) > 20 {
			t.Fatalf("message exceeds limit: %d bytes", len(m))
		}
		if !strings.HasPrefix(m, "H\n") {
			t.Fatalf("expected header, got %q", m)
		}
		joined.WriteString(strings.TrimPrefix(m, "H\n"))
	}

	if joined.String() != long {
		t.Fatalf("expected content to survive splitting")
	}
}

func TestSplitEmpty(t *testing.T) {
	if messages := markdown.Split("H\n", "", nil, 100); len(messages) != 0 {
		t.Fatalf("expected no messages, got %q", messages)
	}
}
