package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/prompt-vault/internal/models"
)

// Format is the encoding of a catalog document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from a file extension
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a catalog document. Only parse success is checked: missing
// fields decode to empty values, and a wrong top-level shape is an error.
func Parse(data []byte, format Format) (models.Catalog, error) {
	var c models.Catalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	}
	return c, nil
}

// ParseFile reads and decodes a catalog document from disk
func ParseFile(path string) (models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data, FormatForPath(path))
}
