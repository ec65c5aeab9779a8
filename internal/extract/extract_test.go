package extract

import (
	"context"
	"reflect"
	"testing"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/document"
)

func run(t *testing.T, text string, kind constants.DocumentKind) Fields {
	t.Helper()
	e := NewRuleExtractor(nil)
	fields, err := e.ExtractFields(context.Background(),
		document.Pages{Texts: []string{text}, CharCount: len(text)}, kind)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	return fields
}

func TestResumeFirstEmailWins(t *testing.T) {
	fields := run(t, "Contact: a@first.io\nBackup: z@second.io\n", constants.KindResume)
	v := fields.Get(FieldEmail)
	if v.Text != "a@first.io" {
		t.Errorf("email = %q; want first occurrence", v.Text)
	}
	if v.Coverage != constants.CoverageFound {
		t.Errorf("coverage = %q", v.Coverage)
	}
}

func TestResumeDeterministic(t *testing.T) {
	const text = "Jane Doe\njane@x.io\n\nSkills\nGo, Rust\n"
	first := run(t, text, constants.KindResume)
	for i := 0; i < 10; i++ {
		again := run(t, text, constants.KindResume)
		if !reflect.DeepEqual(first.Values, again.Values) {
			t.Fatalf("extraction diverged on run %d", i)
		}
	}
}

func TestResumeNameLineBeatsEmailInference(t *testing.T) {
	fields := run(t, "Jane Doe\njohn.smith@x.io\n", constants.KindResume)
	v := fields.Get(FieldDisplayName)
	if v.Text != "Jane Doe" {
		t.Errorf("display name = %q; the name line rule is ordered first", v.Text)
	}
	if v.Coverage != constants.CoverageFound {
		t.Errorf("coverage = %q", v.Coverage)
	}
}

func TestResumeNameInferredFromEmail(t *testing.T) {
	fields := run(t, "resume of a software engineer\njohn.smith@x.io\n", constants.KindResume)
	v := fields.Get(FieldDisplayName)
	if v.Text != "John Smith" {
		t.Errorf("display name = %q; want John Smith", v.Text)
	}
	if v.Coverage != constants.CoverageInferred {
		t.Errorf("coverage = %q; derived values are inferred", v.Coverage)
	}
}

func TestResumeSkillsSectionBeatsVocabulary(t *testing.T) {
	fields := run(t, "jane@x.io\nI also dabble in python.\n\nSkills\nGo, Kubernetes\n", constants.KindResume)
	v := fields.Get(FieldSkills)
	if v.Coverage != constants.CoverageFound {
		t.Fatalf("coverage = %q; section rule must claim the field", v.Coverage)
	}
	if len(v.List) != 2 {
		t.Errorf("skills = %v", v.List)
	}
}

func TestResumeSkillVocabularyFallback(t *testing.T) {
	fields := run(t, "jane@x.io\nI build services in go and deploy with kubernetes.\n", constants.KindResume)
	v := fields.Get(FieldSkills)
	if v.Coverage != constants.CoverageInferred {
		t.Fatalf("coverage = %q; vocabulary hits are inferred", v.Coverage)
	}
	if len(v.List) < 2 {
		t.Errorf("skills = %v", v.List)
	}
}

func TestResumeVocabularyWordBoundary(t *testing.T) {
	// "google" must not fire the "go" vocabulary entry.
	fields := run(t, "jane@x.io\nFormerly at google doing search quality.\n", constants.KindResume)
	for _, s := range fields.Get(FieldSkills).List {
		if s == "go" {
			t.Fatal(`"go" matched inside "google"`)
		}
	}
}

func TestResumeExperienceEntries(t *testing.T) {
	const text = `jane@x.io

Experience
Software Engineer at Acme, Jan 2018 - Jan 2021
Shipped the billing system.
Senior Engineer at Anvil, Feb 2021 - Present
`
	v := run(t, text, constants.KindResume).Get(FieldExperience)
	if len(v.Entries) != 2 {
		t.Fatalf("entries = %d; want 2", len(v.Entries))
	}
	first := v.Entries[0]
	if first.Title != "Software Engineer" || first.Employer != "Acme" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Duration != "Jan 2018 - Jan 2021" {
		t.Errorf("duration = %q", first.Duration)
	}
	if first.Description != "Shipped the billing system." {
		t.Errorf("description = %q", first.Description)
	}
}

func TestResumeRoleKeyedLine(t *testing.T) {
	fields := run(t, "jane@x.io\nRole: Recruiter\n", constants.KindResume)
	if got := fields.Get(FieldRole); got.Text != "Recruiter" || got.Coverage != constants.CoverageFound {
		t.Errorf("role = %+v", got)
	}
}

func TestResumeMissingFieldsTagged(t *testing.T) {
	fields := run(t, "jane@x.io\n", constants.KindResume)
	if got := fields.Get(FieldExperience).Coverage; got != constants.CoverageMissing {
		t.Errorf("experience coverage = %q; want missing", got)
	}
	if got := fields.Get(FieldLocation).Coverage; got != constants.CoverageMissing {
		t.Errorf("location coverage = %q; want missing", got)
	}
}

func TestJobTitleAndCompanyFromFirstLine(t *testing.T) {
	fields := run(t, "Backend Engineer at Initech\nGreat team, great snacks.\n", constants.KindJobDescription)
	if got := fields.Get(FieldTitle); got.Text != "Backend Engineer" || got.Coverage != constants.CoverageFound {
		t.Errorf("title = %+v", got)
	}
	if got := fields.Get(FieldCompany); got.Text != "Initech" || got.Coverage != constants.CoverageInferred {
		t.Errorf("company = %+v", got)
	}
}

func TestJobKeyedLinesBeatFirstLine(t *testing.T) {
	const text = `We are hiring!
Title: Staff Engineer
Company: Initech
`
	fields := run(t, text, constants.KindJobDescription)
	if got := fields.Get(FieldTitle).Text; got != "Staff Engineer" {
		t.Errorf("title = %q", got)
	}
	if got := fields.Get(FieldCompany); got.Text != "Initech" || got.Coverage != constants.CoverageFound {
		t.Errorf("company = %+v", got)
	}
}

func TestJobRequirementsKeepCommas(t *testing.T) {
	const text = `Engineer at Acme

Requirements
Strong Go, Postgres, and Kafka background
Five years of experience
`
	v := run(t, text, constants.KindJobDescription).Get(FieldRequirements)
	if len(v.List) != 2 {
		t.Fatalf("requirements = %v; bullets must not split on commas", v.List)
	}
}

func TestJobCompensationKeyedLine(t *testing.T) {
	fields := run(t, "Engineer at Acme\nSalary: $100k - $130k plus equity\n", constants.KindJobDescription)
	if got := fields.Get(FieldCompensation).Text; got != "$100k - $130k" {
		t.Errorf("compensation = %q", got)
	}
}
