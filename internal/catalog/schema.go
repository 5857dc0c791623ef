package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// catalogSchema describes the published prompts.json document. Loading does
// not enforce it; it backs the explicit validate command.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["tab", "sections"],
    "properties": {
      "tab": {"type": "string"},
      "sections": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["section", "categories"],
          "properties": {
            "section": {"type": "string"},
            "categories": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["category", "prompts"],
                "properties": {
                  "category": {"type": "string"},
                  "prompts": {"type": "array", "items": {"type": "string"}}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.json", strings.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("failed to load catalog schema: %w", err)
	}
	return compiler.Compile("catalog.json")
})

// Validate checks a catalog document against the catalog schema
func Validate(data []byte, format Format) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var doc any
	if format == FormatYAML {
		// Round-trip through JSON so the validator sees JSON types
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("catalog YAML is not representable as JSON: %w", err)
		}
		data = b
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}
