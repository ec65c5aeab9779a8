package constants

import "strings"

// DocumentKind is the declared kind of an uploaded document.
type DocumentKind string

// Stable values (store these exact strings in DB).
const (
	KindResume         DocumentKind = "resume"
	KindJobDescription DocumentKind = "job_description"
)

var allKinds = []DocumentKind{KindResume, KindJobDescription}

// ParseKind maps a caller-supplied kind tag onto a canonical DocumentKind.
func ParseKind(input string) (DocumentKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	synonyms := map[string]DocumentKind{
		"cv":          KindResume,
		"resume":      KindResume,
		"curriculum":  KindResume,
		"job":         KindJobDescription,
		"job_posting": KindJobDescription,
		"posting":     KindJobDescription,
		"jd":          KindJobDescription,
	}
	if k, ok := synonyms[normalized]; ok {
		return k, true
	}
	for _, k := range allKinds {
		if normalized == string(k) {
			return k, true
		}
	}
	return "", false
}

// EntityKind is the aggregate type a reconciled record persists as.
type EntityKind string

const (
	EntityCandidate  EntityKind = "candidate"
	EntityEmployer   EntityKind = "employer"
	EntityJobPosting EntityKind = "job_posting"
)
