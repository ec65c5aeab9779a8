// Package extract scans plain document text for structured fields using an
// ordered list of pattern rules. Each field is claimed by the first rule that
// matches; when a pattern has several hits, the first occurrence in document
// order wins. Both policies are deliberate and covered by tests.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/document"
)

// rule pairs a field name with a matcher tried against the document. Matchers
// are pure functions; evaluation order is the rule list order.
type rule struct {
	field string
	match func(d *docText) (Value, bool)
}

// RuleExtractor implements FieldExtractor with heuristic pattern rules.
type RuleExtractor struct {
	logger *slog.Logger
}

func NewRuleExtractor(logger *slog.Logger) *RuleExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleExtractor{logger: logger}
}

// ExtractFields applies the rule list for the document kind. Missing fields
// are never fatal here; only normalization decides whether a record is usable.
func (e *RuleExtractor) ExtractFields(ctx context.Context, pages document.Pages, kind constants.DocumentKind) (Fields, error) {
	if err := ctx.Err(); err != nil {
		return Fields{}, err
	}
	start := time.Now()

	var rules []rule
	switch kind {
	case constants.KindJobDescription:
		rules = jobRules
	default:
		rules = resumeRules
	}

	d := prepare(pages)
	out := Fields{Kind: kind, Values: make(map[string]Value, len(rules))}

	found, missing := 0, 0
	for _, r := range rules {
		if _, claimed := out.Values[r.field]; claimed {
			continue // first matching rule per field wins
		}
		if v, ok := r.match(d); ok {
			out.set(r.field, v)
			found++
		}
	}
	for _, r := range rules {
		if _, ok := out.Values[r.field]; !ok {
			out.set(r.field, Value{Coverage: constants.CoverageMissing})
			missing++
		}
	}

	e.logger.Debug("extract.rules.ok",
		"kind", string(kind),
		"found", found,
		"missing", missing,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func scalar(text string, cov constants.Coverage) Value {
	return Value{Text: text, Coverage: cov}
}

func list(items []string, cov constants.Coverage) Value {
	return Value{List: items, Coverage: cov}
}

func entries(es []RawEntry, cov constants.Coverage) Value {
	return Value{Entries: es, Coverage: cov}
}
