package llm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildUserPromptTruncatesOnRuneBoundary(t *testing.T) {
	// Place a two-byte rune straddling the truncation point.
	text := strings.Repeat("a", 11999) + "é" + strings.Repeat("b", 100)

	got := BuildUserPrompt(text)
	if !utf8.ValidString(got) {
		t.Fatal("truncated prompt is not valid UTF-8")
	}
	if !strings.Contains(got, "(truncated)") {
		t.Fatal("expected truncation marker for oversized text")
	}
}

func TestBuildUserPromptShortTextUntouched(t *testing.T) {
	got := BuildUserPrompt("  short document  ")
	if !strings.Contains(got, "short document") {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "(truncated)") {
		t.Fatal("short text must not be truncated")
	}
}
