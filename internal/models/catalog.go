package models

// Catalog is the nested prompt document: tab → section → category → prompt text.
// The field names match the published prompts.json document.
type Catalog []Tab

// Tab is the top level of the catalog
type Tab struct {
	Name     string    `json:"tab" yaml:"tab"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Section groups categories within a tab
type Section struct {
	Name       string     `json:"section" yaml:"section"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category holds the raw prompt strings
type Category struct {
	Name    string   `json:"category" yaml:"category"`
	Prompts []string `json:"prompts" yaml:"prompts"`
}

// TabNames returns the tab names in document order
func (c Catalog) TabNames() []string {
	names := make([]string, 0, len(c))
	for _, t := range c {
		names = append(names, t.Name)
	}
	return names
}

// FindTab returns the tab with the given name
func (c Catalog) FindTab(name string) (*Tab, bool) {
	for i := range c {
		if c[i].Name == name {
			return &c[i], true
		}
	}
	return nil, false
}

// PromptCount returns the number of leaf prompts in the catalog
func (c Catalog) PromptCount() int {
	n := 0
	for _, t := range c {
		for _, s := range t.Sections {
			for _, cat := range s.Categories {
				n += len(cat.Prompts)
			}
		}
	}
	return n
}
