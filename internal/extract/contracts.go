package extract

import (
	"context"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/document"
)

// Canonical field names shared by the extractor, normalizer and reconciler.
const (
	FieldDisplayName  = "display_name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldLocation     = "location"
	FieldRole         = "role"
	FieldLinks        = "links"
	FieldSkills       = "skills"
	FieldExperience   = "experience"
	FieldEducation    = "education"
	FieldYearsOfExp   = "years_of_experience"
	FieldTitle        = "title"
	FieldCompany      = "company"
	FieldPostedDate   = "posted_date"
	FieldRequirements = "requirements"
	FieldCompensation = "compensation"
)

// RawEntry is an unnormalized structured sub-record (one experience stint or
// one education record) as it appears in the document.
type RawEntry struct {
	Employer    string `json:"employer,omitempty"`
	Title       string `json:"title,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Years       string `json:"years,omitempty"`
}

// Value is one extracted field with its coverage tag. Exactly one of Text,
// List or Entries is populated, depending on the field's shape.
type Value struct {
	Text     string             `json:"text,omitempty"`
	List     []string           `json:"list,omitempty"`
	Entries  []RawEntry         `json:"entries,omitempty"`
	Coverage constants.Coverage `json:"coverage"`
}

// Fields maps field name to extracted value. One instance per document;
// discarded after normalization.
type Fields struct {
	Kind   constants.DocumentKind `json:"kind"`
	Values map[string]Value       `json:"values"`
}

// Get returns the value for a field. Unset fields read as missing.
func (f Fields) Get(name string) Value {
	if v, ok := f.Values[name]; ok {
		return v
	}
	return Value{Coverage: constants.CoverageMissing}
}

func (f Fields) set(name string, v Value) {
	if f.Values == nil {
		return
	}
	f.Values[name] = v
}

// FieldExtractor is the interface the pipeline depends on. Implementations
// must be deterministic over identical input.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, pages document.Pages, kind constants.DocumentKind) (Fields, error)
}
