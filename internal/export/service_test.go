package export

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
	}{
		{"ascii", "hello world", 6},
		{"multibyte at cut", "résumé text", 3},
		{"cjk", "東京でのソフトウェア開発", 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.n)
			if !utf8.ValidString(got) {
				t.Fatalf("truncate(%q, %d) = %q is not valid UTF-8", tc.in, tc.n, got)
			}
			if len(got) > tc.n+len("…") {
				t.Fatalf("truncate(%q, %d) = %q exceeds limit", tc.in, tc.n, got)
			}
		})
	}
}

func TestTruncateShortStringUntouched(t *testing.T) {
	if got := truncate("short", 140); got != "short" {
		t.Fatalf("got %q", got)
	}
}
