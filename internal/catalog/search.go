package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/prompt-vault/internal/models"
)

// IsSearching reports whether query should switch a view from browsing to
// search results. A blank or whitespace-only query means "not searching":
// callers show the browse view instead of calling Search.
func IsSearching(query string) bool {
	return strings.TrimSpace(query) != ""
}

// Search returns the records whose text, category, section or tab contains
// the trimmed query, case-insensitively, in input order. There is no
// ranking. A query for which IsSearching is false matches every record.
func Search(records []models.FlatPrompt, query string) []models.FlatPrompt {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.FlatPrompt(nil), records...)
	}

	var results []models.FlatPrompt
	for _, r := range records {
		if Matches(r, q) {
			results = append(results, r)
		}
	}
	return results
}

// Matches reports whether a lowercased query is a substring of any field
func Matches(r models.FlatPrompt, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(r.Text), lowerQuery) ||
		strings.Contains(strings.ToLower(r.Category), lowerQuery) ||
		strings.Contains(strings.ToLower(r.Section), lowerQuery) ||
		strings.Contains(strings.ToLower(r.Tab), lowerQuery)
}

// recordSource exposes records to the fuzzy matcher
type recordSource []models.FlatPrompt

func (s recordSource) String(i int) string {
	r := s[i]
	return r.Text + " " + r.Category + " " + r.Section + " " + r.Tab
}

func (s recordSource) Len() int { return len(s) }

// FuzzySearch ranks records by fuzzy match score, best first
func FuzzySearch(records []models.FlatPrompt, query string) []models.FlatPrompt {
	q := strings.TrimSpace(query)
	if q == "" {
		return append([]models.FlatPrompt(nil), records...)
	}

	matches := fuzzy.FindFrom(q, recordSource(records))
	results := make([]models.FlatPrompt, 0, len(matches))
	for _, match := range matches {
		results = append(results, records[match.Index])
	}
	return results
}
