package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/service"
)

// Output formats accepted by the listing commands
const (
	formatText  = "text"
	formatJSON  = "json"
	formatTable = "table"
	formatIDs   = "ids"
)

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return apperrors.ValidationError(fmt.Sprintf("unknown format %q", format)).
		WithDetails("use one of: " + strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatPrompts writes catalog records in the requested format
func formatPrompts(w io.Writer, svc *service.Service, prompts []models.FlatPrompt, format string) error {
	switch format {
	case formatJSON:
		if prompts == nil {
			prompts = []models.FlatPrompt{}
		}
		return writeJSON(w, prompts)
	case formatIDs:
		for _, p := range prompts {
			fmt.Fprintln(w, p.ID)
		}
	case formatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"", "ID", "Prompt", "Location"})
		table.SetAutoWrapText(false)
		for _, p := range prompts {
			table.Append([]string{star(svc.IsFavorite(p.ID)), p.ID, truncate(p.Title(), 60), location(svc, p.Tab, p.Section, p.Category)})
		}
		table.Render()
	default:
		for _, p := range prompts {
			fmt.Fprintf(w, "%s%s - %s\n", starPrefix(svc.IsFavorite(p.ID)), p.ID, p.Title())
			fmt.Fprintf(w, "  %s\n\n", location(svc, p.Tab, p.Section, p.Category))
		}
	}
	return nil
}

// formatCustom writes custom prompts in the requested format
func formatCustom(w io.Writer, svc *service.Service, prompts []models.CustomPrompt, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, prompts)
	case formatIDs:
		for _, p := range prompts {
			fmt.Fprintln(w, p.ID)
		}
	case formatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"ID", "Prompt", "Location"})
		table.SetAutoWrapText(false)
		for _, p := range prompts {
			item := models.CustomItem{CustomPrompt: p}
			table.Append([]string{p.ID, truncate(item.Title(), 60), location(svc, p.Tab, p.Section, p.Category)})
		}
		table.Render()
	default:
		for _, p := range prompts {
			item := models.CustomItem{CustomPrompt: p}
			fmt.Fprintf(w, "%s - %s\n", p.ID, item.Title())
			fmt.Fprintf(w, "  %s\n\n", location(svc, p.Tab, p.Section, p.Category))
		}
	}
	return nil
}

// location is the display breadcrumb with normalized labels
func location(svc *service.Service, tab, section, category string) string {
	return models.Breadcrumb(svc.FormatLabel(tab), svc.FormatLabel(section), svc.FormatLabel(category))
}

func star(favorite bool) string {
	if favorite {
		return "★"
	}
	return ""
}

func starPrefix(favorite bool) string {
	if favorite {
		return "★ "
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
