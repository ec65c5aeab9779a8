package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

var resumeAllowed = map[string]struct{}{
	"display_name": {}, "email": {}, "phone": {}, "location": {},
	"links": {}, "skills": {}, "experience": {}, "education": {},
}

var jobAllowed = map[string]struct{}{
	"title": {}, "company": {}, "location": {}, "posted_date": {},
	"requirements": {}, "compensation": {}, "email": {},
}

// SanitizeDocument rescues near-miss model output so the document can still
// validate: drops nulls and empty strings, removes unknown keys, trims
// strings, and flattens stray scalar values inside list fields. Only lossy
// for fields the schema would have rejected anyway.
func SanitizeDocument(raw []byte, allowed map[string]struct{}) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case []any:
			cleaned := cleanList(t)
			if len(cleaned) == 0 {
				delete(m, k)
				dropped = append(dropped, k+"(empty list)")
			} else {
				m[k] = cleaned
			}
		case float64:
			// models sometimes emit numbers for phone or posted_date
			m[k] = strings.TrimSpace(fmt.Sprintf("%v", t))
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

func cleanList(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case nil:
			continue
		case string:
			s := strings.TrimSpace(t)
			if s != "" {
				out = append(out, s)
			}
		case map[string]any:
			obj := make(map[string]any, len(t))
			for k, v := range t {
				if s, ok := v.(string); ok {
					s = strings.TrimSpace(s)
					if s == "" {
						continue
					}
					obj[k] = s
				} else if v != nil {
					obj[k] = v
				}
			}
			if len(obj) > 0 {
				out = append(out, obj)
			}
		default:
			out = append(out, item)
		}
	}
	return out
}
