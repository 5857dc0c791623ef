package catalog

import "github.com/dpshade/prompt-vault/internal/models"

// Fallback group names for records with empty labels
const (
	UnknownSection  = "Unknown section"
	UnknownCategory = "Unknown category"
)

// SectionGroup is a section heading with its categories in first-seen order
type SectionGroup struct {
	Name       string          `json:"section"`
	Categories []CategoryGroup `json:"categories"`
}

// CategoryGroup holds the records of one category
type CategoryGroup struct {
	Name    string              `json:"category"`
	Prompts []models.FlatPrompt `json:"prompts"`
}

// GroupBySection groups records by section then category, keeping the order
// in which each group is first seen. Used by the favorites view.
func GroupBySection(records []models.FlatPrompt) []SectionGroup {
	var groups []SectionGroup
	sectionIdx := make(map[string]int)
	categoryIdx := make(map[string]map[string]int)

	for _, r := range records {
		sec := r.Section
		if sec == "" {
			sec = UnknownSection
		}
		cat := r.Category
		if cat == "" {
			cat = UnknownCategory
		}

		si, ok := sectionIdx[sec]
		if !ok {
			si = len(groups)
			sectionIdx[sec] = si
			categoryIdx[sec] = make(map[string]int)
			groups = append(groups, SectionGroup{Name: sec})
		}

		ci, ok := categoryIdx[sec][cat]
		if !ok {
			ci = len(groups[si].Categories)
			categoryIdx[sec][cat] = ci
			groups[si].Categories = append(groups[si].Categories, CategoryGroup{Name: cat})
		}

		groups[si].Categories[ci].Prompts = append(groups[si].Categories[ci].Prompts, r)
	}
	return groups
}
