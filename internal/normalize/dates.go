package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/binarybreez/jobswipe/internal/entity"
)

// Layouts accepted by ParseYearMonth, most specific first.
var yearMonthLayouts = []string{
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"01/2006",
	"1/2006",
	"2006-01",
	"2006",
}

var (
	// "to" must be whitespace-delimited so it never splits inside a month
	// name like "October".
	reRangeSplit = regexp.MustCompile(`\s+to\s+|\s*[-–—]\s*`)
	rePresent    = regexp.MustCompile(`(?i)^(present|current|now|ongoing)$`)
	reYearOnly   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// ParseYearMonth parses a single date token at month granularity. Bare years
// resolve to January.
func ParseYearMonth(raw string) (entity.YearMonth, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.YearMonth{}, false
	}
	for _, layout := range yearMonthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			m := t.Month()
			if layout == "2006" {
				m = time.January
			}
			return entity.YearMonth{Year: t.Year(), Month: m}, true
		}
	}
	return entity.YearMonth{}, false
}

// ParseDateRange parses a duration string like "Jan 2020 – Mar 2022" or
// "2019 - present". A present-style end token yields a nil end. The range is
// returned as extracted; inverted-range policy is applied by the caller.
func ParseDateRange(raw string) (entity.YearMonth, *entity.YearMonth, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.YearMonth{}, nil, false
	}
	parts := reRangeSplit.Split(raw, 2)
	start, ok := ParseYearMonth(parts[0])
	if !ok {
		return entity.YearMonth{}, nil, false
	}
	if len(parts) < 2 || rePresent.MatchString(strings.TrimSpace(parts[1])) {
		return start, nil, true
	}
	end, ok := ParseYearMonth(parts[1])
	if !ok {
		return start, nil, true
	}
	return start, &end, true
}

// Layouts accepted for posted dates, tried in order.
var postedDateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2 January 2006",
}

// ParsePostedDate canonicalizes a posted-date string to YYYY-MM-DD.
func ParsePostedDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// yearList pulls the four-digit years out of a free-form span like
// "2018 - 2022", sorted ascending by appearance order.
func yearList(raw string) []int {
	matches := reYearOnly.FindAllString(raw, -1)
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		if y, err := strconv.Atoi(m); err == nil {
			years = append(years, y)
		}
	}
	return years
}

func nowYearMonth() entity.YearMonth {
	now := time.Now()
	return entity.YearMonth{Year: now.Year(), Month: now.Month()}
}
