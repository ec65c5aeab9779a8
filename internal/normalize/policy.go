package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InvertedRangeMode says what to do with an experience entry whose end date
// precedes its start date.
type InvertedRangeMode string

const (
	// InvertedRangeOpen corrects the end date to open-ended. Lenient default;
	// may mask extraction errors, which is why it is configurable.
	InvertedRangeOpen InvertedRangeMode = "open"
	// InvertedRangeDrop discards the offending entry instead.
	InvertedRangeDrop InvertedRangeMode = "drop"
)

// Policy holds the normalization decisions that are configuration rather than
// law: inverted date-range handling and the job natural-key composition.
type Policy struct {
	InvertedRange InvertedRangeMode `yaml:"inverted_range"`

	// JobKeyIncludesDate controls whether the posted date participates in the
	// job natural key. With it, re-postings on a new date become new entities;
	// without it, they merge into the original posting.
	JobKeyIncludesDate bool `yaml:"job_key_includes_date"`

	// DefaultCountryCode is prefixed to phone numbers that carry no country
	// code of their own.
	DefaultCountryCode string `yaml:"default_country_code"`
}

// DefaultPolicy is lenient dates, employer+title+date job keys, US phone
// prefix.
func DefaultPolicy() Policy {
	return Policy{
		InvertedRange:      InvertedRangeOpen,
		JobKeyIncludesDate: true,
		DefaultCountryCode: "1",
	}
}

// LoadPolicy reads a YAML policy file, filling unset fields from the default.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch p.InvertedRange {
	case InvertedRangeOpen, InvertedRangeDrop:
	default:
		return fmt.Errorf("policy: unknown inverted_range %q", p.InvertedRange)
	}
	return nil
}
