package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/binarybreez/jobswipe/constants"
)

// BuildSystemPrompt composes the system message for a document kind.
func BuildSystemPrompt(kind constants.DocumentKind) string {
	common := []string{
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Use ISO-8601 dates (YYYY-MM-DD) wherever the schema asks for a date.",
		"Never output null. If a field is not present in the document, omit it.",
		"Never invent values; every field must be supported by the document text.",
	}

	var specific []string
	if kind == constants.KindJobDescription {
		specific = []string{
			"You are a job-posting parser.",
			"'title' is the role being hired for, without the company name.",
			"'requirements' is one entry per requirement bullet, kept verbatim.",
			"'compensation' is the salary text as written, e.g. \"$120k - $150k\".",
		}
	} else {
		specific = []string{
			"You are a resume parser.",
			"'skills' lists individual skills, one per entry, no sentences.",
			"'experience' entries carry the duration text as written, e.g. \"Jan 2020 - Present\".",
			"'email' and 'phone' must appear in the document verbatim; do not guess.",
		}
	}
	return strings.Join(append(specific, common...), " ")
}

// BuildUserPrompt packages the document text, truncated to keep request
// sizes bounded.
func BuildUserPrompt(text string) string {
	const maxChars = 12000

	var b strings.Builder
	b.WriteString("Document text:\n")
	text = strings.TrimSpace(text)
	if len(text) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		b.WriteString(text[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
