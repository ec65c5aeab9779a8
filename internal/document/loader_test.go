package document

import (
	"context"
	"strings"
	"testing"

	"github.com/binarybreez/jobswipe/internal/common"
)

func TestPDFLoaderRejectsEmpty(t *testing.T) {
	l := NewPDFLoader(nil)
	_, err := l.Load(context.Background(), nil)
	if common.KindOf(err) != common.UnreadableDocument {
		t.Fatalf("expected UnreadableDocument, got %v", err)
	}
}

func TestPDFLoaderRejectsGarbage(t *testing.T) {
	l := NewPDFLoader(nil)
	_, err := l.Load(context.Background(), []byte("definitely not a pdf"))
	if common.KindOf(err) != common.UnreadableDocument {
		t.Fatalf("expected UnreadableDocument, got %v", err)
	}
	f, _ := common.AsFailure(err)
	if f.Retryable() {
		t.Error("unreadable documents must not be retryable")
	}
}

func TestPDFLoaderRejectsTruncatedHeader(t *testing.T) {
	// Valid magic bytes, nothing else. Must error, never panic.
	l := NewPDFLoader(nil)
	_, err := l.Load(context.Background(), []byte("%PDF-1.7\n"))
	if common.KindOf(err) != common.UnreadableDocument {
		t.Fatalf("expected UnreadableDocument, got %v", err)
	}
}

func TestPlainTextLoader(t *testing.T) {
	var l PlainTextLoader
	pages, err := l.Load(context.Background(), []byte("  hello world  "))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pages.Texts) != 1 || pages.Texts[0] != "hello world" {
		t.Errorf("pages = %+v", pages)
	}
	if pages.CharCount != len("hello world") {
		t.Errorf("char count = %d", pages.CharCount)
	}

	if _, err := l.Load(context.Background(), []byte("   ")); common.KindOf(err) != common.UnreadableDocument {
		t.Errorf("blank input must be unreadable, got %v", err)
	}
}

func TestPagesText(t *testing.T) {
	p := Pages{Texts: []string{"one", "two"}}
	if got := p.Text(); !strings.Contains(got, "one") || !strings.Contains(got, "two") {
		t.Errorf("Text() = %q", got)
	}
}
