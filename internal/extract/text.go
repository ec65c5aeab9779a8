package extract

import (
	"regexp"
	"strings"

	"github.com/binarybreez/jobswipe/internal/document"
)

// docText is the preprocessed view of a document the rules match against.
// Line breaks are preserved because section detection depends on them.
type docText struct {
	text     string
	lines    []string
	sections map[string][]string // heading key -> body lines, first heading wins
	order    []string
}

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBullets    = regexp.MustCompile(`^[•*\-–▪‣]+\s*`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
	reHeadingSep = regexp.MustCompile(`[:\s]+$`)
)

// section headings recognized in resumes and job postings, keyed by the
// canonical name the rules look up.
var headingPatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{"experience", regexp.MustCompile(`(?i)^(work\s+)?(experience|employment(\s+history)?|work\s+history|professional\s+experience)$`)},
	{"education", regexp.MustCompile(`(?i)^(education|academic\s+background|academics)$`)},
	{"skills", regexp.MustCompile(`(?i)^((technical|core|key)\s+)?(skills|competencies|technologies)$`)},
	{"requirements", regexp.MustCompile(`(?i)^(requirements|qualifications|what\s+you('ll)?\s+(need|bring)|must\s+haves?)$`)},
	{"responsibilities", regexp.MustCompile(`(?i)^(responsibilities|duties|what\s+you('ll)?\s+do|the\s+role)$`)},
	{"projects", regexp.MustCompile(`(?i)^(projects|personal\s+projects)$`)},
	{"certifications", regexp.MustCompile(`(?i)^(certifications?|licenses?)$`)},
	{"benefits", regexp.MustCompile(`(?i)^(benefits|perks|what\s+we\s+offer)$`)},
	{"summary", regexp.MustCompile(`(?i)^(summary|profile|objective|about(\s+me)?)$`)},
}

// prepare normalizes whitespace while keeping line structure, strips bullet
// glyphs, and splits the text into heading-delimited sections.
func prepare(pages document.Pages) *docText {
	text := pages.Text()
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.Trim(l, "\f"))
		l = reBullets.ReplaceAllString(l, "")
		lines = append(lines, strings.TrimSpace(l))
	}

	d := &docText{
		text:     text,
		lines:    lines,
		sections: make(map[string][]string),
	}

	current := ""
	for _, line := range lines {
		if key, ok := headingKey(line); ok {
			current = key
			if _, seen := d.sections[key]; !seen {
				d.sections[key] = nil
				d.order = append(d.order, key)
			}
			continue
		}
		if current != "" && line != "" {
			d.sections[current] = append(d.sections[current], line)
		}
	}
	return d
}

// headingKey reports whether a line is a recognized section heading.
// Headings are short standalone lines, optionally ending in a colon.
func headingKey(line string) (string, bool) {
	trimmed := reHeadingSep.ReplaceAllString(strings.TrimSpace(line), "")
	if trimmed == "" || len(trimmed) > 40 {
		return "", false
	}
	for _, h := range headingPatterns {
		if h.re.MatchString(trimmed) {
			return h.key, true
		}
	}
	return "", false
}

// section returns the body lines of the first section whose key matched.
func (d *docText) section(key string) []string {
	return d.sections[key]
}

// nonEmptyLines returns the document's lines with blanks removed, in order.
func (d *docText) nonEmptyLines() []string {
	out := make([]string, 0, len(d.lines))
	for _, l := range d.lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// firstMatch returns the first occurrence of re in document order.
// Determinism: identical input always yields the same value.
func (d *docText) firstMatch(re *regexp.Regexp) (string, bool) {
	loc := re.FindStringIndex(d.text)
	if loc == nil {
		return "", false
	}
	return d.text[loc[0]:loc[1]], true
}

// keyedLine scans for a "Key: value" line whose key matches re and returns
// the value portion of the first such line.
func (d *docText) keyedLine(re *regexp.Regexp) (string, bool) {
	for _, line := range d.lines {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		if re.MatchString(strings.TrimSpace(line[:idx])) {
			v := strings.TrimSpace(line[idx+1:])
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// splitList breaks a comma/pipe/bullet separated line into items.
func splitList(lines []string) []string {
	var items []string
	for _, line := range lines {
		for _, part := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == '|' || r == ';' || r == '•'
		}) {
			part = strings.TrimSpace(part)
			if part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}
