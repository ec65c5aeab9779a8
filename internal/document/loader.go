// Package document turns raw uploaded bytes into plain-text pages.
//
// It uses ledongthuc/pdf (pure Go, no CGO) for text extraction. Scanned PDFs
// with no embedded text layer are rejected; OCR is out of scope.
package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/binarybreez/jobswipe/internal/common"
)

// Pages is the ordered page-text sequence produced from one document.
type Pages struct {
	Texts     []string
	CharCount int
}

// Text joins the pages with form-feed markers so downstream section
// detection keeps page boundaries.
func (p Pages) Text() string {
	return strings.Join(p.Texts, "\n\f\n")
}

// Loader is the behavior the pipeline depends on.
type Loader interface {
	Load(ctx context.Context, data []byte) (Pages, error)
}

// PDFLoader reads PDF byte streams. No side effects beyond the read.
type PDFLoader struct {
	logger *slog.Logger
}

func NewPDFLoader(logger *slog.Logger) *PDFLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFLoader{logger: logger}
}

// Load extracts one string per page. Fails with UnreadableDocument when the
// bytes are not a well-formed PDF or contain zero extractable text.
func (l *PDFLoader) Load(ctx context.Context, data []byte) (_ Pages, err error) {
	start := time.Now()
	if len(data) == 0 {
		return Pages{}, common.NewFailure(common.UnreadableDocument, "empty document", nil)
	}

	// ledongthuc/pdf panics on some malformed inputs rather than returning
	// an error; treat those the same as a parse error.
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("document.load.panic", "reason", fmt.Sprint(r))
			err = common.NewFailure(common.UnreadableDocument, "malformed pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Pages{}, common.NewFailure(common.UnreadableDocument, "not a well-formed pdf", err)
	}

	var pages Pages
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return Pages{}, ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages; the zero-text check below catches
			// documents where every page fails
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages.Texts = append(pages.Texts, text)
		pages.CharCount += len(text)
	}

	if pages.CharCount == 0 {
		return Pages{}, common.NewFailure(common.UnreadableDocument,
			"no extractable text; the document may be a scanned image", nil)
	}

	l.logger.Debug("document.load.ok",
		"pages", len(pages.Texts),
		"chars", pages.CharCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

// PlainTextLoader wraps already-decoded text (job descriptions submitted as
// free text) in the same Pages shape the PDF path produces.
type PlainTextLoader struct{}

func (PlainTextLoader) Load(_ context.Context, data []byte) (Pages, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Pages{}, common.NewFailure(common.UnreadableDocument, "empty document", nil)
	}
	return Pages{Texts: []string{text}, CharCount: len(text)}, nil
}
