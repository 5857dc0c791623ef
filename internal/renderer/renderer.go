package renderer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/dpshade/prompt-vault/internal/models"
)

// Renderer handles prompt rendering
type Renderer struct {
	prompt   models.FlatPrompt
	title    func(string) string
	favorite bool
}

// NewRenderer creates a new renderer instance. title formats the category
// label used as the heading; nil leaves labels unchanged.
func NewRenderer(prompt models.FlatPrompt, title func(string) string) *Renderer {
	if title == nil {
		title = func(s string) string { return s }
	}
	return &Renderer{prompt: prompt, title: title}
}

// WithFavorite marks the rendered prompt as a favorite
func (r *Renderer) WithFavorite(favorite bool) *Renderer {
	r.favorite = favorite
	return r
}

// RenderText renders the prompt as plain text
func (r *Renderer) RenderText() string {
	return r.prompt.Text
}

// RenderJSON renders the prompt as a JSON message array for LLM APIs
func (r *Renderer) RenderJSON() (string, error) {
	messages := []Message{
		{
			Role:    "user",
			Content: r.prompt.Text,
		},
	}

	jsonBytes, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	return string(jsonBytes), nil
}

// Message represents a chat message for LLM APIs
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RenderMarkdown renders the prompt as a markdown document with its
// location as the heading
func (r *Renderer) RenderMarkdown() string {
	var b strings.Builder

	heading := r.title(r.prompt.Category)
	if heading == "" {
		heading = "Prompt"
	}
	if r.favorite {
		heading = "★ " + heading
	}
	fmt.Fprintf(&b, "# %s\n\n", heading)

	if crumb := models.Breadcrumb(r.title(r.prompt.Tab), r.title(r.prompt.Section)); crumb != "" {
		fmt.Fprintf(&b, "_%s_\n\n", crumb)
	}

	for _, line := range strings.Split(r.prompt.Text, "\n") {
		fmt.Fprintf(&b, "> %s\n", line)
	}
	if r.prompt.ID != "" {
		fmt.Fprintf(&b, "\n`%s`\n", r.prompt.ID)
	}
	return b.String()
}

// RenderTerminal renders the markdown form for a terminal
func (r *Renderer) RenderTerminal(term *glamour.TermRenderer) (string, error) {
	return term.Render(r.RenderMarkdown())
}

// NewTerminal creates a glamour renderer that follows the vault theme. The
// GLAMOUR_STYLE environment variable overrides the theme.
func NewTerminal(wordWrap int, dark bool) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	var styleOption glamour.TermRendererOption
	switch {
	case profile == termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	case dark:
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}
