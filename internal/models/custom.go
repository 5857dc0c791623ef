package models

// CustomPrompt is a prompt authored by the user. It is never edited after
// creation, only removed.
type CustomPrompt struct {
	ID        string `json:"id"`
	Tab       string `json:"tab"`
	Section   string `json:"section"`
	Category  string `json:"category"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// CustomInput is the user supplied part of a CustomPrompt
type CustomInput struct {
	Tab      string `json:"tab"`
	Section  string `json:"section"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Preferences holds the persisted display preferences
type Preferences struct {
	Dark bool `json:"dark"`
}
