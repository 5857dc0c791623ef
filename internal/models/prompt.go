package models

import (
	"strings"
)

// FlatPrompt is one leaf of the catalog addressed by its derived id.
// It is recomputed from the Catalog on every load and never stored.
type FlatPrompt struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Tab      string `json:"tab"`
	Section  string `json:"section"`
	Category string `json:"category"`
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (p FlatPrompt) FilterValue() string {
	return cleanString(p.Text + " " + p.Category + " " + p.Section + " " + p.Tab)
}

// Title satisfies the list.Item interface
func (p FlatPrompt) Title() string {
	title := []rune(cleanString(p.Text))
	maxTitleLength := 90
	if len(title) > maxTitleLength {
		return string(title[:maxTitleLength-3]) + "..."
	}
	return string(title)
}

// Description satisfies the list.Item interface
func (p FlatPrompt) Description() string {
	return Breadcrumb(p.Tab, p.Section, p.Category)
}

// Breadcrumb joins the non-empty location labels with " › "
func Breadcrumb(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if cleanPart := cleanString(part); cleanPart != "" {
			kept = append(kept, cleanPart)
		}
	}
	return strings.Join(kept, " › ")
}

// CustomItem adapts a CustomPrompt to the list.Item interface
type CustomItem struct {
	CustomPrompt
}

// FilterValue returns the value used for filtering in lists
func (c CustomItem) FilterValue() string {
	return cleanString(c.Text + " " + c.Category + " " + c.Section + " " + c.Tab)
}

// Title satisfies the list.Item interface
func (c CustomItem) Title() string {
	return FlatPrompt{Text: c.Text}.Title()
}

// Description satisfies the list.Item interface
func (c CustomItem) Description() string {
	return Breadcrumb(c.Tab, c.Section, c.Category)
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	// Remove any control characters, newlines, tabs that could break rendering
	var cleaned strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			cleaned.WriteRune(' ')
		} else if r >= 32 && r != 127 { // Keep printable ASCII + unicode
			cleaned.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(cleaned.String()), " ")
}
