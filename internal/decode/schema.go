package decode

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RubricSchema describes the payload the rubric prompt asks for.
const RubricSchema = `{
  "type": "object",
  "required": ["criteria"],
  "properties": {
    "criteria": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "weight"],
        "properties": {
          "name": {"type": "string"},
          "weight": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

// ScoreSchema describes the payload the scoring prompt asks for.
const ScoreSchema = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "weight", "score"],
        "properties": {
          "name": {"type": "string"},
          "weight": {"type": "number"},
          "score": {"type": "number", "minimum": 0, "maximum": 100},
          "feedback": {"type": "string"}
        }
      }
    },
    "total": {"type": "number"}
  }
}`

// Validator checks decoded payloads against a JSON Schema. Callers treat a
// violation as a diagnostic, not a failure: coercion still applies.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator(name, schema string) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemaURL := "https://hackathon-judge.local/schemas/" + name + ".schema.json"
	if err := c.AddResource(schemaURL, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Validator{schema: compiled}, nil
}

// MustValidator is NewValidator for the package's own schemas.
func MustValidator(name, schema string) *Validator {
	v, err := NewValidator(name, schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Check returns nil when p conforms.
func (v *Validator) Check(p Payload) error {
	return v.schema.Validate(map[string]any(p))
}
