package entity

import (
	"fmt"
	"time"

	"github.com/binarybreez/jobswipe/constants"
)

// YearMonth is a calendar date at month granularity. Extracted dates never
// carry day precision reliably, so the model does not pretend they do.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// ExperienceEntry is one employment stint. End is nil for open-ended roles.
type ExperienceEntry struct {
	Employer    string     `json:"employer"`
	Title       string     `json:"title"`
	Start       YearMonth  `json:"start"`
	End         *YearMonth `json:"end,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Identity returns the tuple that identifies an entry across merges.
func (e ExperienceEntry) Identity() string {
	return e.Employer + "\x00" + e.Title + "\x00" + e.Start.String()
}

// EducationEntry is one schooling record.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
}

// MoneyRange is a compensation band.
type MoneyRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Record is the normalized, typed output of the Normalizer and the unit the
// Reconciler merges. Candidate and job-posting uploads share the struct; Kind
// selects which field groups are meaningful. NaturalKey is always present and
// well-formed on any Record the Normalizer returns.
type Record struct {
	Kind       constants.EntityKind `json:"kind"`
	NaturalKey string               `json:"natural_key"`
	Role       constants.Role       `json:"role,omitempty"`

	// Candidate fields.
	DisplayName string            `json:"display_name,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Location    string            `json:"location,omitempty"`
	Links       map[string]string `json:"links,omitempty"`
	Skills      []string          `json:"skills,omitempty"`
	Experience  []ExperienceEntry `json:"experience,omitempty"`
	Education   []EducationEntry  `json:"education,omitempty"`
	YearsOfExp  int               `json:"years_of_experience,omitempty"`

	// Job-posting fields.
	Title        string      `json:"title,omitempty"`
	EmployerKey  string      `json:"employer_key,omitempty"`
	PostedDate   string      `json:"posted_date,omitempty"` // YYYY-MM-DD
	Requirements []string    `json:"requirements,omitempty"`
	Compensation *MoneyRange `json:"compensation,omitempty"`

	// Coverage tags by field name, used to arbitrate merge conflicts.
	Coverage map[string]constants.Coverage `json:"coverage,omitempty"`
}

// CoverageOf returns the coverage tag for a field, defaulting to missing.
func (r *Record) CoverageOf(field string) constants.Coverage {
	if c, ok := r.Coverage[field]; ok {
		return c
	}
	return constants.CoverageMissing
}
