package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/binarybreez/jobswipe/constants"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	reURL   = regexp.MustCompile(`https?://[^\s)>\]]+`)

	// "Jan 2022 - Present", "January 2020 – December 2021", "2019-2023",
	// "03/2021 - 09/2024". En-dash, em-dash and hyphen all appear in the wild.
	reDateRange = regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4})\s*[-–—]\s*((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4}|present|current|now|ongoing)`)

	reYear     = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	reDegree   = regexp.MustCompile(`(?i)\b(b\.?\s?(?:s|a|sc|e|tech)\b[^,]*|m\.?\s?(?:s|a|sc|ba|tech)\b[^,]*|bachelor[^,]*|master[^,]*|ph\.?\s?d[^,]*|associate[^,]*|diploma[^,]*)`)
	reCampus   = regexp.MustCompile(`(?i)\b(university|college|institute|school|academy|polytechnic)\b`)
	reTitleSep = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|@)\s+(.+)$`)
)

// fallback skill vocabulary for resumes without a skills heading. Matches are
// tagged inferred, never found.
var skillVocabulary = []string{
	"go", "golang", "python", "java", "javascript", "typescript", "rust", "c++", "c#",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure",
	"react", "node.js", "django", "spring", "grpc", "graphql",
	"machine learning", "data analysis", "linux", "git",
}

var resumeRules = []rule{
	{FieldEmail, func(d *docText) (Value, bool) {
		if v, ok := d.firstMatch(reEmail); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldPhone, func(d *docText) (Value, bool) {
		if v, ok := d.firstMatch(rePhone); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldDisplayName, matchNameLine},
	{FieldDisplayName, matchNameFromEmail},
	{FieldLocation, func(d *docText) (Value, bool) {
		if v, ok := d.keyedLine(regexp.MustCompile(`(?i)^(location|address|based in)$`)); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldRole, func(d *docText) (Value, bool) {
		if v, ok := d.keyedLine(regexp.MustCompile(`(?i)^(role|applying as)$`)); ok {
			return scalar(v, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldLinks, matchLinks},
	{FieldSkills, func(d *docText) (Value, bool) {
		if items := splitList(d.section("skills")); len(items) > 0 {
			return list(items, constants.CoverageFound), true
		}
		return Value{}, false
	}},
	{FieldSkills, matchSkillVocabulary},
	{FieldExperience, matchExperience},
	{FieldEducation, matchEducation},
	{FieldYearsOfExp, matchYearsOfExperience},
}

// matchNameLine takes the first of the leading lines that looks like a person
// name: two to four words, no digits, no contact tokens.
func matchNameLine(d *docText) (Value, bool) {
	lines := d.nonEmptyLines()
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if reEmail.MatchString(line) || reURL.MatchString(line) || strings.ContainsAny(line, "0123456789") {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		ok := true
		for _, w := range words {
			r := rune(w[0])
			if r < 'A' || r > 'Z' {
				ok = false
				break
			}
		}
		if ok {
			return scalar(line, constants.CoverageFound), true
		}
	}
	return Value{}, false
}

// matchNameFromEmail derives a display name from the email local part when no
// name line was present. Tagged inferred so a later found value outranks it.
func matchNameFromEmail(d *docText) (Value, bool) {
	email, ok := d.firstMatch(reEmail)
	if !ok {
		return Value{}, false
	}
	local := email[:strings.Index(email, "@")]
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	var words []string
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, "0123456789") {
			continue
		}
		words = append(words, capitalize(p))
	}
	if len(words) == 0 {
		return Value{}, false
	}
	return scalar(strings.Join(words, " "), constants.CoverageInferred), true
}

func matchLinks(d *docText) (Value, bool) {
	urls := reURL.FindAllString(d.text, -1)
	var links []string
	seen := map[string]bool{}
	for _, u := range urls {
		u = strings.TrimRight(u, ".,;")
		if seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, u)
	}
	if len(links) == 0 {
		return Value{}, false
	}
	return list(links, constants.CoverageFound), true
}

func matchSkillVocabulary(d *docText) (Value, bool) {
	blob := strings.ToLower(d.text)
	var hits []string
	for _, skill := range skillVocabulary {
		if containsToken(blob, skill) {
			hits = append(hits, skill)
		}
	}
	if len(hits) == 0 {
		return Value{}, false
	}
	return list(hits, constants.CoverageInferred), true
}

// containsToken matches skill at word boundaries so "go" does not fire on
// "google" or "mongodb".
func containsToken(blob, token string) bool {
	idx := 0
	for {
		i := strings.Index(blob[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		beforeOK := start == 0 || !isWordRune(rune(blob[start-1]))
		afterOK := end == len(blob) || !isWordRune(rune(blob[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordRune(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9')
}

// matchExperience parses the experience section into raw entries. A dated
// line opens an entry; its head supplies title/employer, falling back to the
// preceding line when the head is empty. Undated lines after an entry are its
// description.
func matchExperience(d *docText) (Value, bool) {
	lines := d.section("experience")
	if len(lines) == 0 {
		return Value{}, false
	}

	var out []RawEntry
	prev := ""
	for _, line := range lines {
		loc := reDateRange.FindStringIndex(line)
		if loc == nil {
			if len(out) > 0 {
				desc := out[len(out)-1].Description
				if desc != "" {
					desc += " "
				}
				out[len(out)-1].Description = desc + line
			}
			prev = line
			continue
		}

		duration := line[loc[0]:loc[1]]
		head := strings.Trim(strings.TrimSpace(line[:loc[0]]+" "+line[loc[1]:]), ",–—-|() ")
		entry := RawEntry{Duration: duration}

		switch {
		case head == "" && prev != "":
			entry.Title, entry.Employer = splitTitleEmployer(prev)
		default:
			entry.Title, entry.Employer = splitTitleEmployer(head)
		}
		out = append(out, entry)
		prev = ""
	}

	if len(out) == 0 {
		return Value{}, false
	}
	return entries(out, constants.CoverageFound), true
}

// splitTitleEmployer splits "Software Engineer at Acme" or
// "Software Engineer, Acme Corp" into (title, employer).
func splitTitleEmployer(head string) (title, employer string) {
	head = strings.TrimSpace(head)
	if m := reTitleSep.FindStringSubmatch(head); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	for _, sep := range []string{",", " — ", " – ", " - ", " | "} {
		if idx := strings.Index(head, sep); idx > 0 {
			return strings.TrimSpace(head[:idx]), strings.TrimSpace(head[idx+len(sep):])
		}
	}
	return head, ""
}

func matchEducation(d *docText) (Value, bool) {
	lines := d.section("education")
	if len(lines) == 0 {
		return Value{}, false
	}

	var out []RawEntry
	for _, line := range lines {
		degree := strings.TrimSpace(reDegree.FindString(line))
		campus := ""
		if reCampus.MatchString(line) {
			// take the comma-separated part naming the institution
			for _, part := range strings.Split(line, ",") {
				if reCampus.MatchString(part) {
					campus = strings.TrimSpace(part)
					break
				}
			}
		}
		years := strings.Join(reYear.FindAllString(line, -1), "-")
		if degree == "" && campus == "" {
			continue
		}
		out = append(out, RawEntry{Degree: degree, Institution: campus, Years: years})
	}

	if len(out) == 0 {
		return Value{}, false
	}
	return entries(out, constants.CoverageFound), true
}

// matchYearsOfExperience derives a rough span from the years mentioned in the
// experience section. Always inferred; the normalizer recomputes precisely.
func matchYearsOfExperience(d *docText) (Value, bool) {
	lines := d.section("experience")
	if len(lines) == 0 {
		return Value{}, false
	}
	minYear, maxYear := 0, 0
	for _, line := range lines {
		for _, y := range reYear.FindAllString(line, -1) {
			n, _ := strconv.Atoi(y)
			if minYear == 0 || n < minYear {
				minYear = n
			}
			if n > maxYear {
				maxYear = n
			}
		}
	}
	if minYear == 0 {
		return Value{}, false
	}
	return scalar(strconv.Itoa(maxYear-minYear), constants.CoverageInferred), true
}

func capitalize(s string) string {
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
