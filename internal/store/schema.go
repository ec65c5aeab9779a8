package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/binarybreez/jobswipe/internal/common"
)

// recordSchema constrains stored record documents. Stored rows are validated
// against it on read so that out-of-band edits or partial writes surface as
// CorruptEntity instead of leaking malformed data into merges.
func recordSchema() map[string]any {
	// Zero year/month means the date was not extracted; entries keep it.
	yearMonth := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"year":  map[string]any{"type": "integer", "minimum": 0, "maximum": 2200},
			"month": map[string]any{"type": "integer", "minimum": 0, "maximum": 12},
		},
		"required": []string{"year", "month"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind":        map[string]any{"type": "string", "enum": []string{"candidate", "employer", "job_posting"}},
			"natural_key": map[string]any{"type": "string", "minLength": 1},
			"role":        map[string]any{"type": "string"},
			"display_name": map[string]any{"type": "string"},
			"email":        map[string]any{"type": "string"},
			"phone":        map[string]any{"type": "string", "pattern": `^\d*$`},
			"location":     map[string]any{"type": "string"},
			"links": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"experience": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"employer":    map[string]any{"type": "string"},
						"title":       map[string]any{"type": "string"},
						"start":       yearMonth,
						"end":         yearMonth,
						"description": map[string]any{"type": "string"},
					},
					"required": []string{"start"},
				},
			},
			"education": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"institution": map[string]any{"type": "string"},
						"degree":      map[string]any{"type": "string"},
						"start_year":  map[string]any{"type": "integer"},
						"end_year":    map[string]any{"type": "integer"},
					},
				},
			},
			"years_of_experience": map[string]any{"type": "integer", "minimum": 0},
			"title":               map[string]any{"type": "string"},
			"employer_key":        map[string]any{"type": "string"},
			"posted_date":         map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"requirements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"compensation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"min":      map[string]any{"type": "number", "minimum": 0},
					"max":      map[string]any{"type": "number", "minimum": 0},
					"currency": map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
				},
				"required": []string{"min", "max", "currency"},
			},
			"coverage": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "string",
					"enum": []string{"found", "inferred", "missing"},
				},
			},
		},
		"required": []string{"kind", "natural_key"},
	}
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(recordSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("record.json")
	})
	return compiledSchema, compileErr
}

// ValidateRecordJSON checks a raw stored record document against the schema.
// A failed check is a CorruptEntity failure naming the natural key.
func ValidateRecordJSON(naturalKey string, raw []byte) error {
	schema, err := compiledRecordSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return common.NewFailure(common.CorruptEntity,
			fmt.Sprintf("stored record for %q is not valid JSON", naturalKey), err)
	}
	if err := schema.Validate(v); err != nil {
		return common.NewFailure(common.CorruptEntity,
			fmt.Sprintf("stored record for %q does not match schema", naturalKey), err)
	}
	return nil
}
