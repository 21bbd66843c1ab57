package notice

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const vocabularySchema = `{
  "type": "object",
  "required": ["labels"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "inherit_defaults": {"type": "boolean"},
    "labels": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["kind"],
        "additionalProperties": false,
        "properties": {
          "field": {"enum": ["notice_author", "profession", "other_activities", "study_subjects"]},
          "name": {"type": "string"},
          "kind": {"enum": ["line", "block", "stop"]},
          "patterns": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "regex": {"type": "string", "minLength": 1}
        },
        "anyOf": [
          {"required": ["patterns"]},
          {"required": ["regex"]}
        ]
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
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("vocabulary.json", strings.NewReader(vocabularySchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("vocabulary.json")
	})
	return schema, schemaErr
}

// validateDocument checks a raw YAML vocabulary against the schema before it
// is decoded, so typos in keys are reported instead of silently ignored.
func validateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("does not match schema: %w", err)
	}
	return nil
}
