package extract

import (
	"regexp"
	"strings"

	"github.com/binarybreez/jobswipe/constants"
)

var (
	// "$120k–$150k", "$80,000 - $120,000", "$95K"
	reMoneyRange = regexp.MustCompile(`\$\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?[kK]?(?:\s*[-–—]\s*\$?\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?[kK]?)?`)

	reISODate     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	reNaturalDate = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)

	reTitleKey   = regexp.MustCompile(`(?i)^(job\s*)?(title|position|role)$`)
	reCompanyKey = regexp.MustCompile(`(?i)^(company|employer|organization|org)$`)
	rePostedKey  = regexp.MustCompile(`(?i)^(posted|date\s*posted|posting\s*date|date)$`)
	reSalaryKey  = regexp.MustCompile(`(?i)^(salary|compensation|pay(\s*range)?)$`)

	// "Backend Engineer at Acme Corp", "Backend Engineer - Acme Corp"
	reTitleAtCompany = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|[-–—|])\s+(.+)$`)
)

var jobRules = []rule{
	{FieldTitle, func(d *docText) (Value, bool) {
		if v, ok := d.keyedLine(reTitleKey); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldTitle, matchTitleFirstLine},
	{FieldCompany, func(d *docText) (Value, bool) {
		if v, ok := d.keyedLine(reCompanyKey); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldCompany, matchCompanyFromTitleLine},
	{FieldPostedDate, matchPostedDate},
	{FieldRequirements, func(d *docText) (Value, bool) {
		if items := requirementLines(d.section("requirements")); len(items) > 0 {
			return list(items, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldRequirements, func(d *docText) (Value, bool) {
		// postings without a requirements heading sometimes list them under
		// the skills heading instead
		if items := splitList(d.section("skills")); len(items) > 0 {
			return list(items, constants.CoverageInferred), true
		}
		return Value{}, false
	}},
	{FieldCompensation, matchCompensation},
	{FieldLocation, func(d *docText) (Value, bool) {
		if v, ok := d.keyedLine(regexp.MustCompile(`(?i)^(location|office|where)$`)); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldEmail, func(d *docText) (Value, bool) {
		// contact address for the posting, when present
		if v, ok := d.firstMatch(reEmail); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
}

// matchTitleFirstLine treats the first non-empty line as the posting title
// when no explicit Title: line exists. The "at Company" suffix, if any, is
// stripped here and claimed by matchCompanyFromTitleLine.
func matchTitleFirstLine(d *docText) (Value, bool) {
	lines := d.nonEmptyLines()
	if len(lines) == 0 {
		return Value{}, false
	}
	line := lines[0]
	if len(line) > 90 {
		return Value{}, false // prose paragraph, not a title
	}
	if m := reTitleAtCompany.FindStringSubmatch(line); m != nil {
		return scalar(strings.TrimSpace(m[1]), constants.CoverageFound), true
	}
	return scalar(line, constants.CoverageFound), true
}

func matchCompanyFromTitleLine(d *docText) (Value, bool) {
	lines := d.nonEmptyLines()
	if len(lines) == 0 {
		return Value{}, false
	}
	if m := reTitleAtCompany.FindStringSubmatch(lines[0]); m != nil {
		return scalar(strings.TrimSpace(m[2]), constants.CoverageInferred), true
	}
	return Value{}, false
}

func matchPostedDate(d *docText) (Value, bool) {
	if v, ok := d.keyedLine(rePostedKey); ok {
		return scalar(v, constants.CoverageFound), true
	}
	if v, ok := d.firstMatch(reISODate); ok {
		return scalar(v, constants.CoverageFound), true
	}
	if v, ok := d.firstMatch(reNaturalDate); ok {
		return scalar(v, constants.CoverageFound), true
	}
	return Value{}, false
}

func matchCompensation(d *docText) (Value, bool) {
	if v, ok := d.keyedLine(reSalaryKey); ok {
		if m, found := d.moneyIn(v); found {
			return scalar(m, constants.CoverageFound), true
		}
		return scalar(v, constants.CoverageFound), true
	}
	if v, ok := d.firstMatch(reMoneyRange); ok {
		return scalar(v, constants.CoverageFound), true
	}
	return Value{}, false
}

// moneyIn extracts the money-shaped portion of a salary line.
func (d *docText) moneyIn(line string) (string, bool) {
	m := reMoneyRange.FindString(line)
	return m, m != ""
}

// requirementLines keeps each bullet as one requirement instead of splitting
// on commas; requirement phrases routinely contain commas.
func requirementLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
