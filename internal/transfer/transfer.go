// Package transfer moves custom prompts in and out of the vault as a
// portable JSON document.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
)

// DefaultExportFile is the file name offered for exports
const DefaultExportFile = "custom-prompts.json"

// Defaults fill in the location of imported rows that carry none
type Defaults struct {
	Tab      string `mapstructure:"tab" yaml:"tab"`
	Section  string `mapstructure:"section" yaml:"section"`
	Category string `mapstructure:"category" yaml:"category"`
}

// DefaultDefaults are the built-in import fallbacks
func DefaultDefaults() Defaults {
	return Defaults{Tab: "Custom", Section: "Mine Prompter", Category: "General"}
}

// FormDefaults prefill the location fields of a manually added prompt
func FormDefaults() Defaults {
	return Defaults{Tab: "Custom", Section: "My Ideas", Category: "General"}
}

// Apply fills the empty location fields of in
func (d Defaults) Apply(in models.CustomInput) models.CustomInput {
	if strings.TrimSpace(in.Tab) == "" {
		in.Tab = d.Tab
	}
	if strings.TrimSpace(in.Section) == "" {
		in.Section = d.Section
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = d.Category
	}
	return in
}

// Adder is the custom-prompt creation path shared with manual entry
type Adder interface {
	AddCustom(in models.CustomInput) models.CustomPrompt
}

// Result summarizes an import
type Result struct {
	// Added lists the created prompts in document order
	Added []models.CustomPrompt `json:"added"`
	// Skipped counts elements without usable text or of the wrong type
	Skipped int `json:"skipped"`
	// Rejected is set when the document is not a JSON array; nothing was
	// added
	Rejected bool `json:"rejected"`
}

// Export writes prompts as an indented JSON array
func Export(w io.Writer, prompts []models.CustomPrompt) error {
	if prompts == nil {
		prompts = []models.CustomPrompt{}
	}
	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode custom prompts: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportFile writes prompts to path, or DefaultExportFile when path is empty
func ExportFile(path string, prompts []models.CustomPrompt) (string, error) {
	if path == "" {
		path = DefaultExportFile
	}
	var buf bytes.Buffer
	if err := Export(&buf, prompts); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", apperrors.StorageError("write export file", err)
	}
	return path, nil
}

// Import reads a JSON document and appends every usable element through
// adder. Import never replaces or deduplicates existing prompts.
//
// A document that is not valid JSON returns a parse error and adds nothing.
// A valid document whose top level is not an array is rejected without an
// error. Elements that are not objects, or whose text is blank, are
// skipped.
func Import(r io.Reader, adder Adder, defaults Defaults) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, apperrors.StorageError("read import", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, apperrors.ParseError("import document", err)
	}

	rows, ok := doc.([]interface{})
	if !ok {
		return Result{Rejected: true}, nil
	}

	res := Result{Added: []models.CustomPrompt{}}
	for _, row := range rows {
		in, ok := coerce(row, defaults)
		if !ok {
			res.Skipped++
			continue
		}
		res.Added = append(res.Added, adder.AddCustom(in))
	}
	return res, nil
}

// ImportFile imports the document at path
func ImportFile(path string, adder Adder, defaults Defaults) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.ErrCodeFileNotFound, "open import file")
	}
	defer f.Close()
	return Import(f, adder, defaults)
}

func coerce(row interface{}, defaults Defaults) (models.CustomInput, bool) {
	obj, ok := row.(map[string]interface{})
	if !ok {
		return models.CustomInput{}, false
	}

	in := models.CustomInput{
		Tab:      field(obj, "tab", defaults.Tab),
		Section:  field(obj, "section", defaults.Section),
		Category: field(obj, "category", defaults.Category),
		Text:     field(obj, "text", ""),
	}
	if strings.TrimSpace(in.Text) == "" {
		return models.CustomInput{}, false
	}
	return in, true
}

// field renders obj[key] as a string; absent and null use fallback
func field(obj map[string]interface{}, key, fallback string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}
