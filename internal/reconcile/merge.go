package reconcile

import (
	"sort"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/entity"
	"github.com/binarybreez/jobswipe/internal/extract"
)

// mergeRecords folds an incoming record into a stored one and reports which
// fields changed. The stored record is never weakened: a found value is only
// replaced by another found value, scalars never revert to empty, and
// experience entries are append-only.
func mergeRecords(stored *entity.Record, incoming *entity.Record) []string {
	changed := make(map[string]bool)
	if stored.Coverage == nil {
		stored.Coverage = map[string]constants.Coverage{}
	}

	mergeScalar(stored, incoming, extract.FieldDisplayName, &stored.DisplayName, incoming.DisplayName, changed)
	mergeScalar(stored, incoming, extract.FieldEmail, &stored.Email, incoming.Email, changed)
	mergeScalar(stored, incoming, extract.FieldPhone, &stored.Phone, incoming.Phone, changed)
	mergeScalar(stored, incoming, extract.FieldLocation, &stored.Location, incoming.Location, changed)
	mergeScalar(stored, incoming, extract.FieldTitle, &stored.Title, incoming.Title, changed)
	mergeScalar(stored, incoming, extract.FieldPostedDate, &stored.PostedDate, incoming.PostedDate, changed)

	if incoming.Role != "" && stored.Role == "" {
		stored.Role = incoming.Role
		changed["role"] = true
	}

	if mergeSet(&stored.Skills, incoming.Skills) {
		changed[extract.FieldSkills] = true
		promoteCoverage(stored, incoming, extract.FieldSkills)
	}
	if mergeSet(&stored.Requirements, incoming.Requirements) {
		changed[extract.FieldRequirements] = true
		promoteCoverage(stored, incoming, extract.FieldRequirements)
	}

	if mergeLinks(stored, incoming) {
		changed[extract.FieldLinks] = true
		promoteCoverage(stored, incoming, extract.FieldLinks)
	}

	if mergeExperience(stored, incoming) {
		changed[extract.FieldExperience] = true
		promoteCoverage(stored, incoming, extract.FieldExperience)
	}
	if mergeEducation(stored, incoming) {
		changed[extract.FieldEducation] = true
		promoteCoverage(stored, incoming, extract.FieldEducation)
	}

	if incoming.YearsOfExp > stored.YearsOfExp {
		stored.YearsOfExp = incoming.YearsOfExp
		changed[extract.FieldYearsOfExp] = true
		promoteCoverage(stored, incoming, extract.FieldYearsOfExp)
	}

	if mergeCompensation(stored, incoming) {
		changed[extract.FieldCompensation] = true
		promoteCoverage(stored, incoming, extract.FieldCompensation)
	}

	out := make([]string, 0, len(changed))
	for f := range changed {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// mergeScalar overwrites when the stored value is empty, or when the incoming
// coverage strictly outranks the stored one. Equal-rank conflicts keep the
// stored value so replays are idempotent.
func mergeScalar(stored, incoming *entity.Record, field string, dst *string, src string, changed map[string]bool) {
	if src == "" {
		return
	}
	if *dst == "" || incoming.CoverageOf(field).Outranks(stored.CoverageOf(field)) {
		if *dst != src {
			*dst = src
			changed[field] = true
		}
		promoteCoverage(stored, incoming, field)
	}
}

func promoteCoverage(stored, incoming *entity.Record, field string) {
	if incoming.CoverageOf(field).Outranks(stored.CoverageOf(field)) {
		stored.Coverage[field] = incoming.CoverageOf(field)
	}
}

// mergeSet unions sorted, deduplicated sets. Reports whether dst grew.
func mergeSet(dst *[]string, src []string) bool {
	if len(src) == 0 {
		return false
	}
	have := make(map[string]bool, len(*dst))
	for _, v := range *dst {
		have[v] = true
	}
	grew := false
	for _, v := range src {
		if !have[v] {
			*dst = append(*dst, v)
			have[v] = true
			grew = true
		}
	}
	if grew {
		sort.Strings(*dst)
	}
	return grew
}

func mergeLinks(stored, incoming *entity.Record) bool {
	if len(incoming.Links) == 0 {
		return false
	}
	if stored.Links == nil {
		stored.Links = make(map[string]string, len(incoming.Links))
	}
	grew := false
	for k, v := range incoming.Links {
		if _, taken := stored.Links[k]; !taken {
			stored.Links[k] = v
			grew = true
		}
	}
	return grew
}

// mergeExperience appends entries whose (employer, title, start) tuple is new.
// Existing entries are never rewritten; history only accumulates.
func mergeExperience(stored, incoming *entity.Record) bool {
	if len(incoming.Experience) == 0 {
		return false
	}
	have := make(map[string]bool, len(stored.Experience))
	for _, e := range stored.Experience {
		have[e.Identity()] = true
	}
	grew := false
	for _, e := range incoming.Experience {
		if !have[e.Identity()] {
			stored.Experience = append(stored.Experience, e)
			have[e.Identity()] = true
			grew = true
		}
	}
	return grew
}

func mergeEducation(stored, incoming *entity.Record) bool {
	if len(incoming.Education) == 0 {
		return false
	}
	key := func(e entity.EducationEntry) string { return e.Institution + "\x00" + e.Degree }
	have := make(map[string]bool, len(stored.Education))
	for _, e := range stored.Education {
		have[key(e)] = true
	}
	grew := false
	for _, e := range incoming.Education {
		if !have[key(e)] {
			stored.Education = append(stored.Education, e)
			have[key(e)] = true
			grew = true
		}
	}
	return grew
}

func mergeCompensation(stored, incoming *entity.Record) bool {
	if incoming.Compensation == nil {
		return false
	}
	field := extract.FieldCompensation
	if stored.Compensation == nil || incoming.CoverageOf(field).Outranks(stored.CoverageOf(field)) {
		if stored.Compensation != nil && *stored.Compensation == *incoming.Compensation {
			return false
		}
		cp := *incoming.Compensation
		stored.Compensation = &cp
		return true
	}
	return false
}
