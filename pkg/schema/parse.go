package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrEmptySchema is returned when the payload holds no data.
var ErrEmptySchema = errors.New("schema: document is empty")

// Parse decodes a JSON or YAML payload and validates its structure. The
// source string only decorates error messages.
func Parse(data []byte, source string) (*Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrEmptySchema, source)
	}

	raw := trimmed
	if !json.Valid(trimmed) {
		converted, err := yamlToJSON(trimmed)
		if err != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
		}
		raw = converted
	}

	if raw[0] != '{' {
		return nil, fmt.Errorf("schema: parse %s: root must be an object", source)
	}

	var out Schema
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", source, err)
	}
	for i := range out.Pages {
		for j, button := range out.Pages[i].Buttons {
			out.Pages[i].Buttons[j] = button.AsAction()
		}
	}
	if err := Validate(&out); err != nil {
		return nil, fmt.Errorf("schema: %s: %w", source, err)
	}
	return &out, nil
}

// FromDocument parses a loaded schema document.
func FromDocument(doc Document) (*Schema, error) {
	return Parse(doc.Raw(), doc.Location())
}

// MustParse panics when data is not a valid schema. Useful for tests and
// embedded schemas.
func MustParse(data []byte) *Schema {
	out, err := Parse(data, "inline")
	if err != nil {
		panic(err)
	}
	return out
}

func yamlToJSON(data []byte) ([]byte, error) {
	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, ErrEmptySchema
	}
	return json.Marshal(decoded)
}
