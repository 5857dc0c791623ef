package catalog

import "github.com/dpshade/prompt-vault/internal/models"

// Flatten converts the catalog tree into one record per leaf prompt in
// depth-first document order. Duplicates are kept; an empty or nil catalog
// yields an empty slice.
func Flatten(c models.Catalog) []models.FlatPrompt {
	out := make([]models.FlatPrompt, 0, c.PromptCount())
	for _, t := range c {
		for _, s := range t.Sections {
			for _, cat := range s.Categories {
				for _, text := range cat.Prompts {
					out = append(out, models.FlatPrompt{
						ID:       DeriveID(t.Name, s.Name, cat.Name, text),
						Text:     text,
						Tab:      t.Name,
						Section:  s.Name,
						Category: cat.Name,
					})
				}
			}
		}
	}
	return out
}

// InTab returns the records of one tab, preserving order
func InTab(records []models.FlatPrompt, tab string) []models.FlatPrompt {
	var out []models.FlatPrompt
	for _, r := range records {
		if r.Tab == tab {
			out = append(out, r)
		}
	}
	return out
}

// FindByID returns the first record with the given id
func FindByID(records []models.FlatPrompt, id string) (models.FlatPrompt, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return models.FlatPrompt{}, false
}
