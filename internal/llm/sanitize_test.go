package llm

import (
	"testing"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/extract"
)

func TestSanitizeDropsNullsAndUnknowns(t *testing.T) {
	raw := []byte(`{
		"email": "jane@x.io",
		"phone": null,
		"location": "  Austin, TX ",
		"confidence": 0.9,
		"skills": ["Go", "", null, "Rust"]
	}`)

	cleaned, dropped, err := SanitizeDocument(raw, resumeAllowed)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(dropped) != 2 {
		t.Errorf("dropped = %v; want phone(null) and confidence(unknown)", dropped)
	}
	if err := ValidateJSONAgainstSchema(BuildResumeJSONSchema(), cleaned); err != nil {
		t.Errorf("cleaned document must validate: %v", err)
	}

	fields, err := FieldsFromDocument(cleaned, constants.KindResume)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if got := fields.Get(extract.FieldSkills).List; len(got) != 2 {
		t.Errorf("skills = %v; empty and null entries must be gone", got)
	}
	if got := fields.Get(extract.FieldLocation).Text; got != "Austin, TX" {
		t.Errorf("location = %q; must be trimmed", got)
	}
	if fields.Get(extract.FieldPhone).Coverage != constants.CoverageMissing {
		t.Error("dropped phone must read back as missing")
	}
}

func TestStrictValidationRejectsBadEmail(t *testing.T) {
	raw := []byte(`{"email": "not-an-email"}`)
	if err := ValidateJSONAgainstSchema(BuildResumeJSONSchema(), raw); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestJobDocumentRequiresTitle(t *testing.T) {
	raw := []byte(`{"company": "Acme"}`)
	if err := ValidateJSONAgainstSchema(BuildJobJSONSchema(), raw); err == nil {
		t.Fatal("expected validation error for missing title")
	}
}

func TestFieldsFromJobDocument(t *testing.T) {
	raw := []byte(`{
		"title": "Staff Engineer",
		"company": "Initech",
		"requirements": ["Go", "Postgres"],
		"compensation": "$150k - $180k"
	}`)
	if err := ValidateJSONAgainstSchema(BuildJobJSONSchema(), raw); err != nil {
		t.Fatalf("validate: %v", err)
	}
	fields, err := FieldsFromDocument(raw, constants.KindJobDescription)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if got := fields.Get(extract.FieldTitle).Text; got != "Staff Engineer" {
		t.Errorf("title = %q", got)
	}
	if got := fields.Get(extract.FieldRequirements).List; len(got) != 2 {
		t.Errorf("requirements = %v", got)
	}
}
