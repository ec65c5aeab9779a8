package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/binarybreez/jobswipe/internal/entity"
)

// reMoney captures one money amount: an optional currency symbol, digits with
// optional thousands separators, and an optional k suffix.
var reMoney = regexp.MustCompile(`(?i)([$€£])?\s*(\d{1,3}(?:,\d{3})*|\d+)(?:\.(\d+))?\s*(k)?`)

var currencyBySymbol = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// ParseMoneyRange parses compensation strings like "$120k - $150k",
// "$90,000–$110,000" or a single "$140k" (Min == Max).
func ParseMoneyRange(raw string) (entity.MoneyRange, bool) {
	matches := reMoney.FindAllStringSubmatch(raw, 2)
	amounts := make([]float64, 0, 2)
	currency := ""
	for _, m := range matches {
		if m[2] == "" {
			continue
		}
		digits := strings.ReplaceAll(m[2], ",", "")
		if m[3] != "" {
			digits += "." + m[3]
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if strings.EqualFold(m[4], "k") {
			v *= 1000
		}
		if c, ok := currencyBySymbol[m[1]]; ok && currency == "" {
			currency = c
		}
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return entity.MoneyRange{}, false
	}
	if currency == "" {
		currency = "USD"
	}
	mr := entity.MoneyRange{Min: amounts[0], Max: amounts[0], Currency: currency}
	if len(amounts) > 1 {
		mr.Max = amounts[1]
		if mr.Max < mr.Min {
			mr.Min, mr.Max = mr.Max, mr.Min
		}
	}
	return mr, true
}
