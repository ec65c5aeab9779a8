package normalize

import (
	"errors"
	"testing"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/entity"
	"github.com/binarybreez/jobswipe/internal/extract"
)

func candidateFields(values map[string]extract.Value) extract.Fields {
	return extract.Fields{Kind: constants.KindResume, Values: values}
}

func jobFields(values map[string]extract.Value) extract.Fields {
	return extract.Fields{Kind: constants.KindJobDescription, Values: values}
}

func found(text string) extract.Value {
	return extract.Value{Text: text, Coverage: constants.CoverageFound}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Jane.Doe@Example.com", "jane.doe@example.com", true},
		{"  user@host.io  ", "user@host.io", true},
		{"no-at-sign", "", false},
		{"@host.com", "", false},
		{"user@", "", false},
		{"user@nodot", "", false},
		{"user@host.", "", false},
		{"a@b@c.com", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := NormalizeEmail(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"(555) 123-4567", "15551234567", true}, // 10 digits get the default country code
		{"+1 555 123 4567", "15551234567", true},
		{"+44 20 7946 0958", "442079460958", true},
		{"12345", "", false},          // too short
		{"1234567890123456", "", false}, // over E.164 max
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := n.NormalizePhone(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeSet(t *testing.T) {
	got := NormalizeSet([]string{"Go", "  Rust ", "go", "Python", ""})
	want := []string{"go", "python", "rust"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeSet = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeSet = %v; want %v", got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Acme Corp.", "acme-corp"},
		{"  O'Brien & Sons  ", "o-brien-sons"},
		{"Anvil Co", "anvil-co"},
		{"---", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, ok := ParseDateRange("Jan 2020 – Mar 2022")
	if !ok || start.Year != 2020 || start.Month != 1 {
		t.Fatalf("start = %v, ok = %v", start, ok)
	}
	if end == nil || end.Year != 2022 || end.Month != 3 {
		t.Fatalf("end = %v", end)
	}

	start, end, ok = ParseDateRange("2019 - Present")
	if !ok || start.Year != 2019 || end != nil {
		t.Fatalf("open range: start = %v, end = %v, ok = %v", start, end, ok)
	}

	// Full month names contain "to"; the splitter must not break them apart.
	start, end, ok = ParseDateRange("October 2020 - December 2021")
	if !ok || start.Year != 2020 || start.Month != 10 {
		t.Fatalf("full month start = %v, ok = %v", start, ok)
	}
	if end == nil || end.Year != 2021 || end.Month != 12 {
		t.Fatalf("full month end = %v", end)
	}

	start, end, ok = ParseDateRange("October 2020 - Present")
	if !ok || start.Year != 2020 || start.Month != 10 || end != nil {
		t.Fatalf("open full-month range: start = %v, end = %v, ok = %v", start, end, ok)
	}

	start, end, ok = ParseDateRange("2018 to 2022")
	if !ok || start.Year != 2018 || end == nil || end.Year != 2022 {
		t.Fatalf("worded range: start = %v, end = %v, ok = %v", start, end, ok)
	}

	if _, _, ok := ParseDateRange("no dates here"); ok {
		t.Fatal("expected failure on garbage input")
	}
}

func TestParsePostedDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-14", "2025-03-14", true},
		{"March 14, 2025", "2025-03-14", true},
		{"03/14/2025", "2025-03-14", true},
		{"not a date", "", false},
	}
	for _, tc := range tests {
		got, ok := ParsePostedDate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParsePostedDate(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseMoneyRange(t *testing.T) {
	mr, ok := ParseMoneyRange("$120k - $150k")
	if !ok || mr.Min != 120000 || mr.Max != 150000 || mr.Currency != "USD" {
		t.Fatalf("ParseMoneyRange = %+v, %v", mr, ok)
	}

	mr, ok = ParseMoneyRange("$90,000–$110,000")
	if !ok || mr.Min != 90000 || mr.Max != 110000 {
		t.Fatalf("ParseMoneyRange = %+v, %v", mr, ok)
	}

	mr, ok = ParseMoneyRange("$140k")
	if !ok || mr.Min != 140000 || mr.Max != 140000 {
		t.Fatalf("single value = %+v, %v", mr, ok)
	}

	if _, ok := ParseMoneyRange("competitive salary"); ok {
		t.Fatal("expected failure on non-numeric input")
	}
}

func TestNormalizeCandidateKey(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	rec, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail: found("Jane.Doe@Example.com"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.NaturalKey != "jane.doe@example.com" {
		t.Errorf("NaturalKey = %q; want jane.doe@example.com", rec.NaturalKey)
	}
	if rec.Email != "jane.doe@example.com" {
		t.Errorf("Email = %q", rec.Email)
	}
	if rec.Kind != constants.EntityCandidate {
		t.Errorf("Kind = %q", rec.Kind)
	}
}

func TestNormalizeRoleMetadata(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	rec, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail: found("jane.doe@example.com"),
		extract.FieldRole:  found("Hiring Manager"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Role != constants.RoleEmployer {
		t.Errorf("Role = %q; want %q", rec.Role, constants.RoleEmployer)
	}

	rec, err = n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail: found("jane.doe@example.com"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Role != constants.RoleJobSeeker {
		t.Errorf("default Role = %q; want %q", rec.Role, constants.RoleJobSeeker)
	}

	rec, err = n.Normalize(jobFields(map[string]extract.Value{
		extract.FieldTitle:   found("Backend Engineer"),
		extract.FieldCompany: found("Acme Corp"),
	}))
	if err != nil {
		t.Fatalf("Normalize job: %v", err)
	}
	if rec.Role != constants.RoleEmployer {
		t.Errorf("job Role = %q; want %q", rec.Role, constants.RoleEmployer)
	}
}

func TestNormalizeCandidatePhoneFallback(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	rec, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldPhone: found("(555) 123-4567"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.NaturalKey != "tel:15551234567" {
		t.Errorf("NaturalKey = %q; want tel:15551234567", rec.NaturalKey)
	}
}

func TestNormalizeCandidateMissingKey(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	_, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldDisplayName: found("Jane Doe"),
	}))
	var f *common.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if f.Kind != common.MissingNaturalKey {
		t.Errorf("Kind = %q; want %q", f.Kind, common.MissingNaturalKey)
	}
	if f.Field != extract.FieldEmail {
		t.Errorf("Field = %q; want %q", f.Field, extract.FieldEmail)
	}
}

func TestNormalizeCandidateInvalidEmailNoFallback(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	_, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail: found("not-an-email"),
	}))
	if common.KindOf(err) != common.MissingNaturalKey {
		t.Fatalf("expected MissingNaturalKey, got %v", err)
	}
}

func TestNormalizeExperienceInvertedRange(t *testing.T) {
	entries := []extract.RawEntry{{
		Employer: "Acme",
		Title:    "Engineer",
		Duration: "Mar 2022 – Jan 2020",
	}}

	open := NewNormalizer(DefaultPolicy(), nil)
	rec, err := open.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail:      found("a@b.co"),
		extract.FieldExperience: {Entries: entries, Coverage: constants.CoverageFound},
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(rec.Experience) != 1 {
		t.Fatalf("open mode should keep the entry, got %d", len(rec.Experience))
	}
	if rec.Experience[0].End != nil {
		t.Error("open mode should clear the inverted end date")
	}

	drop := DefaultPolicy()
	drop.InvertedRange = InvertedRangeDrop
	rec, err = NewNormalizer(drop, nil).Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail:      found("a@b.co"),
		extract.FieldExperience: {Entries: entries, Coverage: constants.CoverageFound},
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(rec.Experience) != 0 {
		t.Errorf("drop mode should discard the entry, got %d", len(rec.Experience))
	}
}

func TestNormalizeYearsOfExperience(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)
	rec, err := n.Normalize(candidateFields(map[string]extract.Value{
		extract.FieldEmail: found("a@b.co"),
		extract.FieldExperience: {
			Entries: []extract.RawEntry{
				{Employer: "Acme", Title: "Engineer", Duration: "Jan 2018 – Jan 2021"},
				{Employer: "Anvil", Title: "Senior Engineer", Duration: "Jan 2021 – Jan 2023"},
			},
			Coverage: constants.CoverageFound,
		},
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.YearsOfExp != 5 {
		t.Errorf("YearsOfExp = %d; want 5", rec.YearsOfExp)
	}
	if rec.CoverageOf(extract.FieldYearsOfExp) != constants.CoverageInferred {
		t.Errorf("years coverage = %q; want inferred", rec.CoverageOf(extract.FieldYearsOfExp))
	}
}

func TestNormalizeJobKey(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)

	rec, err := n.Normalize(jobFields(map[string]extract.Value{
		extract.FieldTitle:      found("Senior Go Engineer"),
		extract.FieldCompany:    found("Acme Corp."),
		extract.FieldPostedDate: found("2025-03-14"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Kind != constants.EntityJobPosting {
		t.Errorf("Kind = %q", rec.Kind)
	}
	if rec.NaturalKey != "acme-corp/senior-go-engineer/2025-03-14" {
		t.Errorf("NaturalKey = %q", rec.NaturalKey)
	}

	noDate := DefaultPolicy()
	noDate.JobKeyIncludesDate = false
	rec, err = NewNormalizer(noDate, nil).Normalize(jobFields(map[string]extract.Value{
		extract.FieldTitle:      found("Senior Go Engineer"),
		extract.FieldCompany:    found("Acme Corp."),
		extract.FieldPostedDate: found("2025-03-14"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.NaturalKey != "acme-corp/senior-go-engineer" {
		t.Errorf("NaturalKey without date = %q", rec.NaturalKey)
	}
}

func TestNormalizeJobMissingTitle(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)
	_, err := n.Normalize(jobFields(map[string]extract.Value{
		extract.FieldCompany: found("Acme Corp."),
	}))
	if common.KindOf(err) != common.MissingNaturalKey {
		t.Fatalf("expected MissingNaturalKey, got %v", err)
	}
}

func TestNormalizeJobCompensation(t *testing.T) {
	n := NewNormalizer(DefaultPolicy(), nil)
	rec, err := n.Normalize(jobFields(map[string]extract.Value{
		extract.FieldTitle:        found("Engineer"),
		extract.FieldCompany:      found("Acme"),
		extract.FieldCompensation: found("$120k - $150k"),
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := entity.MoneyRange{Min: 120000, Max: 150000, Currency: "USD"}
	if rec.Compensation == nil || *rec.Compensation != want {
		t.Errorf("Compensation = %+v; want %+v", rec.Compensation, want)
	}
}
