package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/clipboard"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/renderer"
	"github.com/dpshade/prompt-vault/internal/ui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive browser (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

// runTUI starts the browser; the model loads the catalog itself so a slow
// fetch does not delay the first frame
func (a *app) runTUI(ctx context.Context) error {
	model := ui.NewModel(a.service, a.logger.Named("ui"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCommandFailed, "Terminal UI failed")
	}
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var tab, format string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog prompts",
		Example: `  prompt-vault list
  prompt-vault list --tab Marketing --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatTable, formatIDs); err != nil {
				return err
			}
			a.loadCatalog(cmd.Context())

			prompts := a.service.ListPrompts()
			if tab != "" {
				prompts = a.service.PromptsInTab(tab)
			}
			return formatPrompts(cmd.OutOrStdout(), a.service, prompts, format)
		},
	}

	cmd.Flags().StringVarP(&tab, "tab", "t", "", "Only list prompts of this tab")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, table or ids")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var format string
	var fuzzy bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search prompt text, category, section and tab",
		Long: `Search prompts with a case-insensitive substring match over the prompt
text and its category, section and tab. With --fuzzy the results are
ranked by a fuzzy match instead.`,
		Example: `  prompt-vault search "cold outreach"
  prompt-vault search --fuzzy cldout`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatTable, formatIDs); err != nil {
				return err
			}
			a.loadCatalog(cmd.Context())

			query := strings.Join(args, " ")
			if !catalog.IsSearching(query) {
				return apperrors.ValidationError("search requires a non-blank query")
			}

			var prompts []models.FlatPrompt
			if fuzzy {
				prompts = a.service.FuzzySearchPrompts(query)
			} else {
				prompts = a.service.SearchPrompts(query)
			}
			return formatPrompts(cmd.OutOrStdout(), a.service, prompts, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, table or ids")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "Rank results by fuzzy match")
	return cmd
}

// Formats of a single prompt
const (
	formatMarkdown = "markdown"
	formatPretty   = "pretty"
	formatMessages = "messages"
)

func newShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show a prompt",
		Long: `Show a catalog or custom prompt.

Formats:
  text      location and prompt text (default)
  json      the prompt record
  markdown  a markdown document
  pretty    the markdown document styled for the terminal
  messages  a chat message array for LLM APIs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatMarkdown, formatPretty, formatMessages); err != nil {
				return err
			}
			a.loadCatalog(cmd.Context())

			prompt, err := a.findPrompt(args[0])
			if err != nil {
				return err
			}
			return a.showPrompt(cmd.OutOrStdout(), prompt, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, markdown, pretty or messages")
	return cmd
}

// findPrompt resolves id against the catalog, then the custom prompts
func (a *app) findPrompt(id string) (models.FlatPrompt, error) {
	prompt, err := a.service.GetPrompt(id)
	if err == nil {
		return prompt, nil
	}
	for _, c := range a.service.CustomPrompts() {
		if c.ID == id {
			return models.FlatPrompt{ID: c.ID, Text: c.Text, Tab: c.Tab, Section: c.Section, Category: c.Category}, nil
		}
	}
	return models.FlatPrompt{}, err
}

func (a *app) showPrompt(w io.Writer, prompt models.FlatPrompt, format string) error {
	favorite := a.service.IsFavorite(prompt.ID)
	r := renderer.NewRenderer(prompt, a.service.FormatLabel).WithFavorite(favorite)

	switch format {
	case formatJSON:
		return writeJSON(w, struct {
			models.FlatPrompt
			Favorite bool `json:"favorite"`
		}{prompt, favorite})
	case formatMarkdown:
		_, err := io.WriteString(w, r.RenderMarkdown())
		return err
	case formatPretty:
		term, err := renderer.NewTerminal(80, a.service.Dark())
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		out, err := r.RenderTerminal(term)
		if err != nil {
			return fmt.Errorf("failed to render prompt: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case formatMessages:
		out, err := r.RenderJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	default:
		fmt.Fprintf(w, "ID: %s\n", prompt.ID)
		fmt.Fprintf(w, "Location: %s\n", location(a.service, prompt.Tab, prompt.Section, prompt.Category))
		if favorite {
			fmt.Fprintln(w, "Favorite: yes")
		}
		fmt.Fprintf(w, "\n%s\n", r.RenderText())
		return nil
	}
}

func newCopyCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a prompt to the clipboard",
		Long: `Copy a catalog or custom prompt to the system clipboard. When no
clipboard utility is available the prompt is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatMessages); err != nil {
				return err
			}
			a.loadCatalog(cmd.Context())

			prompt, err := a.findPrompt(args[0])
			if err != nil {
				return err
			}

			content := renderer.NewRenderer(prompt, nil).RenderText()
			if format == formatMessages {
				if content, err = renderer.NewRenderer(prompt, nil).RenderJSON(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			statusMsg, err := clipboard.CopyWithFallback(content)
			if err != nil {
				fmt.Fprintf(a.stderr, "Warning: %v\n", err)
				fmt.Fprintln(out, content)
				return nil
			}
			fmt.Fprintln(out, statusMsg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Copied format: text or messages")
	return cmd
}

func newLabelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "label <text...>",
		Short: "Normalize a raw catalog label for display",
		Example: `  prompt-vault label "seo and ppc faqs"
  # SEO and PPC FAQs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.service.FormatLabel(strings.Join(args, " ")))
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a JSON or YAML catalog file",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			annotationNoSetup: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeFileNotFound, "Could not read "+path)
			}

			format := catalog.FormatForPath(path)
			if err := catalog.Validate(data, format); err != nil {
				return apperrors.ParseError("catalog "+path, err)
			}
			c, err := catalog.Parse(data, format)
			if err != nil {
				return apperrors.ParseError("catalog "+path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid catalog: %d tabs, %d prompts\n", path, len(c), c.PromptCount())
			return nil
		},
	}
}
