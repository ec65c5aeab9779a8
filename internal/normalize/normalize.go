// Package normalize canonicalizes extracted field values into a typed record
// with a guaranteed natural key. Values that fail their sanity check are
// dropped back to missing; only the absence of every natural-key candidate
// fails the whole document.
package normalize

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/entity"
	"github.com/binarybreez/jobswipe/internal/extract"
)

// PhoneKeyPrefix marks natural keys derived from a phone number instead of an
// email address.
const PhoneKeyPrefix = "tel:"

type Normalizer struct {
	policy Policy
	logger *slog.Logger
}

func NewNormalizer(policy Policy, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{policy: policy, logger: logger}
}

// Normalize converts extracted fields into a Record. The returned record
// always carries a non-empty, well-formed natural key; otherwise the error is
// a MissingNaturalKey failure naming the field that caused it.
func (n *Normalizer) Normalize(fields extract.Fields) (*entity.Record, error) {
	switch fields.Kind {
	case constants.KindJobDescription:
		return n.normalizeJob(fields)
	default:
		return n.normalizeCandidate(fields)
	}
}

func (n *Normalizer) normalizeCandidate(fields extract.Fields) (*entity.Record, error) {
	roleVal := fields.Get(extract.FieldRole)
	rec := &entity.Record{
		Kind:     constants.EntityCandidate,
		Role:     constants.NormalizeRole(roleVal.Text),
		Coverage: map[string]constants.Coverage{},
	}
	if roleVal.Text != "" {
		rec.Coverage[extract.FieldRole] = roleVal.Coverage
	}

	emailVal := fields.Get(extract.FieldEmail)
	email, emailOK := NormalizeEmail(emailVal.Text)
	if emailOK {
		rec.Email = email
		rec.Coverage[extract.FieldEmail] = emailVal.Coverage
	} else if emailVal.Text != "" {
		n.logger.Warn("normalize.email.dropped", "value", emailVal.Text)
	}

	phoneVal := fields.Get(extract.FieldPhone)
	phone, phoneOK := n.NormalizePhone(phoneVal.Text)
	if phoneOK {
		rec.Phone = phone
		rec.Coverage[extract.FieldPhone] = phoneVal.Coverage
	} else if phoneVal.Text != "" {
		n.logger.Warn("normalize.phone.dropped", "value", phoneVal.Text)
	}

	// Natural key: normalized email, with the phone digits as fallback.
	switch {
	case emailOK:
		rec.NaturalKey = email
	case phoneOK:
		rec.NaturalKey = PhoneKeyPrefix + phone
	default:
		field := extract.FieldEmail
		if emailVal.Text != "" {
			return nil, common.FieldFailure(common.MissingNaturalKey, field,
				"email value failed validation and no phone fallback exists")
		}
		return nil, common.FieldFailure(common.MissingNaturalKey, field,
			"no email or phone found in document")
	}

	if v := fields.Get(extract.FieldDisplayName); v.Text != "" {
		rec.DisplayName = cleanScalar(v.Text)
		rec.Coverage[extract.FieldDisplayName] = v.Coverage
	}
	if v := fields.Get(extract.FieldLocation); v.Text != "" {
		rec.Location = cleanScalar(v.Text)
		rec.Coverage[extract.FieldLocation] = v.Coverage
	}
	if v := fields.Get(extract.FieldLinks); len(v.List) > 0 {
		rec.Links = classifyLinks(v.List)
		rec.Coverage[extract.FieldLinks] = v.Coverage
	}
	if v := fields.Get(extract.FieldSkills); len(v.List) > 0 {
		rec.Skills = NormalizeSet(v.List)
		rec.Coverage[extract.FieldSkills] = v.Coverage
	}

	if v := fields.Get(extract.FieldExperience); len(v.Entries) > 0 {
		rec.Experience = n.normalizeExperience(v.Entries)
		if len(rec.Experience) > 0 {
			rec.Coverage[extract.FieldExperience] = v.Coverage
		}
	}
	if v := fields.Get(extract.FieldEducation); len(v.Entries) > 0 {
		rec.Education = normalizeEducation(v.Entries)
		if len(rec.Education) > 0 {
			rec.Coverage[extract.FieldEducation] = v.Coverage
		}
	}

	if years := yearsFromExperience(rec.Experience); years > 0 {
		rec.YearsOfExp = years
		rec.Coverage[extract.FieldYearsOfExp] = constants.CoverageInferred
	} else if v := fields.Get(extract.FieldYearsOfExp); v.Text != "" {
		if y, err := strconv.Atoi(strings.TrimSpace(v.Text)); err == nil && y > 0 {
			rec.YearsOfExp = y
			rec.Coverage[extract.FieldYearsOfExp] = constants.CoverageInferred
		}
	}

	return rec, nil
}

func (n *Normalizer) normalizeJob(fields extract.Fields) (*entity.Record, error) {
	rec := &entity.Record{
		Kind:     constants.EntityJobPosting,
		Role:     constants.RoleEmployer,
		Coverage: map[string]constants.Coverage{},
	}

	titleVal := fields.Get(extract.FieldTitle)
	title := cleanScalar(titleVal.Text)
	if title == "" {
		return nil, common.FieldFailure(common.MissingNaturalKey, extract.FieldTitle,
			"no job title found in document")
	}
	rec.Title = title
	rec.Coverage[extract.FieldTitle] = titleVal.Coverage

	companyVal := fields.Get(extract.FieldCompany)
	employerKey := Slugify(companyVal.Text)
	if employerKey == "" {
		return nil, common.FieldFailure(common.MissingNaturalKey, extract.FieldCompany,
			"no employer found in document")
	}
	rec.EmployerKey = employerKey
	rec.Coverage[extract.FieldCompany] = companyVal.Coverage

	if v := fields.Get(extract.FieldPostedDate); v.Text != "" {
		if date, ok := ParsePostedDate(v.Text); ok {
			rec.PostedDate = date
			rec.Coverage[extract.FieldPostedDate] = v.Coverage
		}
	}
	if v := fields.Get(extract.FieldLocation); v.Text != "" {
		rec.Location = cleanScalar(v.Text)
		rec.Coverage[extract.FieldLocation] = v.Coverage
	}
	if v := fields.Get(extract.FieldRequirements); len(v.List) > 0 {
		rec.Requirements = NormalizeSet(v.List)
		rec.Coverage[extract.FieldRequirements] = v.Coverage
	}
	if v := fields.Get(extract.FieldCompensation); v.Text != "" {
		if mr, ok := ParseMoneyRange(v.Text); ok {
			rec.Compensation = &mr
			rec.Coverage[extract.FieldCompensation] = v.Coverage
		} else {
			n.logger.Warn("normalize.compensation.dropped", "value", v.Text)
		}
	}
	if v := fields.Get(extract.FieldEmail); v.Text != "" {
		if email, ok := NormalizeEmail(v.Text); ok {
			rec.Email = email
			rec.Coverage[extract.FieldEmail] = v.Coverage
		}
	}

	// Natural key: employer + title slug, with the posted date when the
	// policy includes it.
	rec.NaturalKey = employerKey + "/" + Slugify(title)
	if n.policy.JobKeyIncludesDate && rec.PostedDate != "" {
		rec.NaturalKey += "/" + rec.PostedDate
	}
	return rec, nil
}

// NormalizeEmail lowercases and trims, then checks the minimal shape:
// local@domain with a dot in the domain.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return "", false
	}
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return "", false
	}
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return "", false
	}
	return email, true
}

// NormalizePhone strips everything but digits and bounds the digit count to
// 7..15 (E.164 maximum). Numbers without a country code get the policy's
// default prefix.
func (n *Normalizer) NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	hadPlus := strings.HasPrefix(raw, "+")
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 7 || len(digits) > 15 {
		return "", false
	}
	if !hadPlus && n.policy.DefaultCountryCode != "" && len(digits) == 10 {
		digits = n.policy.DefaultCountryCode + digits
	}
	return digits, true
}

// NormalizeSet case-folds, trims and deduplicates, returning a sorted slice.
// Ordering is not significant; sorting keeps stored documents deterministic.
func NormalizeSet(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := strings.ToLower(cleanScalar(item))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Slugify turns "Acme Corp." into "acme-corp" for employer keys.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func (n *Normalizer) normalizeExperience(raws []extract.RawEntry) []entity.ExperienceEntry {
	out := make([]entity.ExperienceEntry, 0, len(raws))
	for _, raw := range raws {
		e := entity.ExperienceEntry{
			Employer:    cleanScalar(raw.Employer),
			Title:       cleanScalar(raw.Title),
			Description: cleanScalar(raw.Description),
		}
		start, end, ok := ParseDateRange(raw.Duration)
		if ok {
			e.Start = start
			e.End = end
			if end != nil && end.Before(start) {
				if n.policy.InvertedRange == InvertedRangeDrop {
					n.logger.Warn("normalize.experience.inverted_range_dropped",
						"employer", e.Employer, "start", start.String(), "end", end.String())
					continue
				}
				// lenient mode: treat as open-ended
				n.logger.Warn("normalize.experience.inverted_range_opened",
					"employer", e.Employer, "start", start.String(), "end", end.String())
				e.End = nil
			}
		}
		if e.Employer == "" && e.Title == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func normalizeEducation(raws []extract.RawEntry) []entity.EducationEntry {
	out := make([]entity.EducationEntry, 0, len(raws))
	for _, raw := range raws {
		e := entity.EducationEntry{
			Institution: cleanScalar(raw.Institution),
			Degree:      cleanScalar(raw.Degree),
		}
		years := yearList(raw.Years)
		if len(years) > 0 {
			e.StartYear = years[0]
			e.EndYear = years[len(years)-1]
		}
		if e.Institution == "" && e.Degree == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// yearsFromExperience sums the covered months across entries, rounding down
// to whole years. Open-ended entries count up to the current month.
func yearsFromExperience(entries []entity.ExperienceEntry) int {
	months := 0
	for _, e := range entries {
		if e.Start.IsZero() {
			continue
		}
		end := e.End
		if end == nil {
			now := nowYearMonth()
			end = &now
		}
		m := (end.Year-e.Start.Year)*12 + int(end.Month) - int(e.Start.Month)
		if m > 0 {
			months += m
		}
	}
	return months / 12
}

func cleanScalar(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func classifyLinks(urls []string) map[string]string {
	links := make(map[string]string, len(urls))
	for _, u := range urls {
		lower := strings.ToLower(u)
		var key string
		switch {
		case strings.Contains(lower, "linkedin.com"):
			key = "linkedin"
		case strings.Contains(lower, "github.com"):
			key = "github"
		default:
			key = "portfolio"
		}
		if _, taken := links[key]; !taken {
			links[key] = u
		}
	}
	return links
}
