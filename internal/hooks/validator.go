package hooks

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateConfigFile checks that an existing config file holds a JSON object
// whose trigger array has the shape schema expects. A missing or empty file
// is valid.
func ValidateConfigFile(path string, schema Schema) error {
	data, err := readConfig(path)
	if err != nil {
		return fmt.Errorf("cannot read config file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	return schema.validate(doc)
}

// validate checks doc against the JSON Schema derived from s
func (s Schema) validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.jsonSchema()),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		msgs = append(msgs, field+": "+verr.Description())
	}
	return fmt.Errorf("unexpected layout: %s", strings.Join(msgs, "; "))
}

// jsonSchema describes the nodes along the trigger path. Everything else in
// the document is left unconstrained.
func (s Schema) jsonSchema() map[string]any {
	entry := map[string]any{"type": "object"}
	if s.Layout == LayoutNested {
		entry["properties"] = map[string]any{
			"hooks": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		}
	}

	node := map[string]any{"type": "array", "items": entry}
	for i := len(s.TriggerPath) - 1; i >= 0; i-- {
		node = map[string]any{
			"type":       "object",
			"properties": map[string]any{s.TriggerPath[i]: node},
		}
	}
	return node
}
