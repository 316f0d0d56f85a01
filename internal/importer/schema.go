package importer

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema describes the shape of a question export file. It is
// deliberately loose about missing fields; records lacking required
// values are skipped during import rather than rejected wholesale.
// Wrong types, however, fail the whole file.
const payloadSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"id": {"type": "string"},
			"external_id": {"type": "string"},
			"grade": {"type": "integer"},
			"chapter": {"type": "string"},
			"title": {"type": "string"},
			"question": {"type": "string"},
			"explanation": {"type": ["string", "null"]},
			"image": {"type": ["string", "null"]},
			"imageAlt": {"type": ["string", "null"]},
			"answerId": {"type": ["string", "null"]},
			"choices": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "string"},
						"text": {"type": "string"}
					}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://questions.json", doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile("schema://questions.json")
	})
	return schema, schemaErr
}

// validatePayload checks raw export JSON against the payload schema.
func validatePayload(raw []byte) error {
	compiled, err := compiledSchema()
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
