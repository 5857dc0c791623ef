package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// Palette is one color set of the theme
type Palette struct {
	// Primary brand colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Neutral colors
	Text       lipgloss.Color
	TextMuted  lipgloss.Color
	TextDim    lipgloss.Color
	Border     lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
}

// DarkPalette works well on dark backgrounds
var DarkPalette = Palette{
	Primary:   lipgloss.Color("205"), // Bright magenta/pink
	Secondary: lipgloss.Color("33"),  // Bright cyan/blue
	Accent:    lipgloss.Color("214"), // Bright orange/yellow

	Success: lipgloss.Color("10"),
	Warning: lipgloss.Color("11"),
	Error:   lipgloss.Color("9"),
	Info:    lipgloss.Color("12"),

	Text:       lipgloss.Color("252"), // Near white
	TextMuted:  lipgloss.Color("244"),
	TextDim:    lipgloss.Color("240"),
	Border:     lipgloss.Color("238"),
	Background: lipgloss.Color("235"),
	Surface:    lipgloss.Color("236"),
}

// LightPalette uses darker variants for contrast on light backgrounds
var LightPalette = Palette{
	Primary:   lipgloss.Color("125"),
	Secondary: lipgloss.Color("24"),
	Accent:    lipgloss.Color("130"),

	Success: lipgloss.Color("22"),
	Warning: lipgloss.Color("136"),
	Error:   lipgloss.Color("160"),
	Info:    lipgloss.Color("24"),

	Text:       lipgloss.Color("232"), // Near black
	TextMuted:  lipgloss.Color("240"),
	TextDim:    lipgloss.Color("244"),
	Border:     lipgloss.Color("248"),
	Background: lipgloss.Color("255"),
	Surface:    lipgloss.Color("254"),
}

// Styles are the component styles derived from a palette
type Styles struct {
	Palette Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Text       lipgloss.Style
	TextMuted  lipgloss.Style
	TextDim    lipgloss.Style
	TabActive  lipgloss.Style
	Tab        lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Info       lipgloss.Style
	Modal      lipgloss.Style
	Content    lipgloss.Style
	FormLabel  lipgloss.Style
	FormHelp   lipgloss.Style
	Search     lipgloss.Style
	Metadata   lipgloss.Style
	Scroll     lipgloss.Style
	ScrollMore lipgloss.Style
}

// NewStyles builds the styles for the dark or light theme
func NewStyles(dark bool) Styles {
	p := LightPalette
	if dark {
		p = DarkPalette
	}

	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Padding(0, 1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Bold(true).
			Padding(0, 1),
		Text:      lipgloss.NewStyle().Foreground(p.Text),
		TextMuted: lipgloss.NewStyle().Foreground(p.TextMuted),
		TextDim:   lipgloss.NewStyle().Foreground(p.TextDim),

		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(p.Secondary).
			Bold(true).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1),

		Success: lipgloss.NewStyle().Foreground(p.Success).Bold(true).Padding(0, 1),
		Warning: lipgloss.NewStyle().Foreground(p.Warning).Bold(true).Padding(0, 1),
		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true).Padding(0, 1),
		Info:    lipgloss.NewStyle().Foreground(p.Info).Bold(true).Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
		Content: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		FormLabel: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true),
		FormHelp: lipgloss.NewStyle().
			Foreground(p.TextDim).
			Italic(true),

		Search: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true).
			Padding(0, 1),
		Metadata: lipgloss.NewStyle().
			Foreground(p.TextDim).
			Padding(0, 1),

		Scroll: lipgloss.NewStyle().
			Foreground(p.TextDim).
			Align(lipgloss.Center),
		ScrollMore: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Bold(true).
			Align(lipgloss.Center),
	}
}

// Delegate styles the list items with the palette
func (s Styles) Delegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(s.Palette.Text)
	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(s.Palette.TextDim)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(s.Palette.Primary).
		BorderForeground(s.Palette.Primary)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(s.Palette.Secondary).
		BorderForeground(s.Palette.Primary)
	return d
}

// TabBar renders names with the active one highlighted
func (s Styles) TabBar(names []string, active int) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if i == active {
			parts[i] = s.TabActive.Render(name)
		} else {
			parts[i] = s.Tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// Status renders a status line of the given kind
func (s Styles) Status(text string, kind string) string {
	switch kind {
	case "success":
		return s.Success.Render(text)
	case "warning":
		return s.Warning.Render(text)
	case "error":
		return s.Error.Render(text)
	case "info":
		return s.Info.Render(text)
	default:
		return s.Text.Render(text)
	}
}

// ScrollIndicators render above and below a scrolled viewport
func (s Styles) ScrollIndicators(canScrollUp, canScrollDown bool) (string, string) {
	top := s.Scroll.Render("─────────")
	if canScrollUp {
		top = s.ScrollMore.Render("...")
	}
	bottom := s.Scroll.Render("─────────")
	if canScrollDown {
		bottom = s.ScrollMore.Render("...")
	}
	return top, bottom
}

// CenterModal places content in the middle of the screen
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// AddMainPadding indents the main content
func AddMainPadding(content string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(content)
}
