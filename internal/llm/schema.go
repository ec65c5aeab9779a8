// Package llm holds the model-facing contracts for LLM-backed field
// extraction: the JSON schemas the model must produce, validation, and the
// sanitize pass that rescues near-miss outputs.
package llm

// BuildResumeJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the provider as a structured output constraint
// and also use it locally to validate.
func BuildResumeJSONSchema() map[string]any {
	entry := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"employer":    map[string]any{"type": "string"},
			"title":       map[string]any{"type": "string"},
			"duration":    map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
	}
	edu := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"institution": map[string]any{"type": "string"},
			"degree":      map[string]any{"type": "string"},
			"years":       map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"display_name": map[string]any{"type": "string", "minLength": 1},
			"email":        map[string]any{"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
			"phone":        map[string]any{"type": "string"},
			"location":     map[string]any{"type": "string"},
			"links": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"experience": map[string]any{"type": "array", "items": entry},
			"education":  map[string]any{"type": "array", "items": edu},
		},
		// everything is optional; the normalizer decides whether enough
		// survived to form a natural key
		"required": []string{},
	}
}

// BuildJobJSONSchema constrains job-description outputs.
func BuildJobJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"company":     map[string]any{"type": "string", "minLength": 1},
			"location":    map[string]any{"type": "string"},
			"posted_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"requirements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"compensation": map[string]any{"type": "string"},
			"email":        map[string]any{"type": "string"},
		},
		"required": []string{"title"},
	}
}
