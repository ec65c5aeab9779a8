package llm

import (
	"encoding/json"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/extract"
)

// resumeDoc and jobDoc mirror the JSON schemas in schema.go.
type resumeDoc struct {
	DisplayName string     `json:"display_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Location    string     `json:"location,omitempty"`
	Links       []string   `json:"links,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	Experience  []rawEntry `json:"experience,omitempty"`
	Education   []eduEntry `json:"education,omitempty"`
}

type rawEntry struct {
	Employer    string `json:"employer,omitempty"`
	Title       string `json:"title,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

type eduEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Years       string `json:"years,omitempty"`
}

type jobDoc struct {
	Title        string   `json:"title,omitempty"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	PostedDate   string   `json:"posted_date,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Compensation string   `json:"compensation,omitempty"`
	Email        string   `json:"email,omitempty"`
}

// FieldsFromDocument converts a validated model document into the extractor
// field shape. Model output is grounded in the document text, so present
// values are tagged found; the rule extractor's inferred/found distinction
// does not apply here.
func FieldsFromDocument(raw []byte, kind constants.DocumentKind) (extract.Fields, error) {
	out := extract.Fields{Kind: kind, Values: map[string]extract.Value{}}

	scalar := func(field, v string) {
		if v != "" {
			out.Values[field] = extract.Value{Text: v, Coverage: constants.CoverageFound}
		}
	}
	list := func(field string, v []string) {
		if len(v) > 0 {
			out.Values[field] = extract.Value{List: v, Coverage: constants.CoverageFound}
		}
	}

	if kind == constants.KindJobDescription {
		var doc jobDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return extract.Fields{}, err
		}
		scalar(extract.FieldTitle, doc.Title)
		scalar(extract.FieldCompany, doc.Company)
		scalar(extract.FieldLocation, doc.Location)
		scalar(extract.FieldPostedDate, doc.PostedDate)
		scalar(extract.FieldCompensation, doc.Compensation)
		scalar(extract.FieldEmail, doc.Email)
		list(extract.FieldRequirements, doc.Requirements)
		return out, nil
	}

	var doc resumeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return extract.Fields{}, err
	}
	scalar(extract.FieldDisplayName, doc.DisplayName)
	scalar(extract.FieldEmail, doc.Email)
	scalar(extract.FieldPhone, doc.Phone)
	scalar(extract.FieldLocation, doc.Location)
	list(extract.FieldLinks, doc.Links)
	list(extract.FieldSkills, doc.Skills)

	if len(doc.Experience) > 0 {
		entries := make([]extract.RawEntry, 0, len(doc.Experience))
		for _, e := range doc.Experience {
			entries = append(entries, extract.RawEntry{
				Employer:    e.Employer,
				Title:       e.Title,
				Duration:    e.Duration,
				Description: e.Description,
			})
		}
		out.Values[extract.FieldExperience] = extract.Value{Entries: entries, Coverage: constants.CoverageFound}
	}
	if len(doc.Education) > 0 {
		entries := make([]extract.RawEntry, 0, len(doc.Education))
		for _, e := range doc.Education {
			entries = append(entries, extract.RawEntry{
				Institution: e.Institution,
				Degree:      e.Degree,
				Years:       e.Years,
			})
		}
		out.Values[extract.FieldEducation] = extract.Value{Entries: entries, Coverage: constants.CoverageFound}
	}
	return out, nil
}

// AllowedKeys returns the sanitize whitelist for a document kind.
func AllowedKeys(kind constants.DocumentKind) map[string]struct{} {
	if kind == constants.KindJobDescription {
		return jobAllowed
	}
	return resumeAllowed
}

// SchemaFor returns the JSON schema for a document kind.
func SchemaFor(kind constants.DocumentKind) map[string]any {
	if kind == constants.KindJobDescription {
		return BuildJobJSONSchema()
	}
	return BuildResumeJSONSchema()
}
