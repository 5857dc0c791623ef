package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/offline"
	"github.com/dpshade/prompt-vault/internal/transfer"
)

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage favorite prompts",
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Add or remove a prompt from the favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if a.service.ToggleFavorite(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "★ %s added to favorites\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "☆ %s removed from favorites\n", id)
			}
			return nil
		},
	}

	var format string
	var grouped bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List favorite prompts",
		Long: `List the favorite catalog prompts in catalog order. With --grouped they
are grouped by section and category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatTable, formatIDs); err != nil {
				return err
			}
			a.loadCatalog(cmd.Context())

			out := cmd.OutOrStdout()
			if !grouped {
				return formatPrompts(out, a.service, a.service.FavoritePrompts(), format)
			}

			groups := a.service.FavoriteGroups()
			if format == formatJSON {
				return writeJSON(out, groups)
			}
			for _, section := range groups {
				fmt.Fprintf(out, "%s\n", a.service.FormatLabel(section.Name))
				for _, category := range section.Categories {
					fmt.Fprintf(out, "  %s\n", a.service.FormatLabel(category.Name))
					for _, p := range category.Prompts {
						fmt.Fprintf(out, "    %s - %s\n", p.ID, p.Title())
					}
				}
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, table or ids")
	listCmd.Flags().BoolVarP(&grouped, "grouped", "g", false, "Group by section and category")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.service.ClearFavorites()
			fmt.Fprintln(cmd.OutOrStdout(), "Favorites cleared")
			return nil
		},
	}

	cmd.AddCommand(toggleCmd, listCmd, clearCmd)
	return cmd
}

func newCustomCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage your own prompts",
	}

	var in models.CustomInput
	addCmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a custom prompt",
		Long: `Add a custom prompt. The text is taken from the arguments, or read from
standard input when no arguments or "-" are given. Empty location flags
fall back to Custom / My Ideas / General.`,
		Example: `  prompt-vault custom add "Summarize this thread in three bullets"
  pbpaste | prompt-vault custom add --tab Work --section Email`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
				fmt.Fprintln(a.stderr, "Reading prompt text from stdin, finish with Ctrl-D")
			}
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			in.Text = text

			created, err := a.service.AddCustom(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", created.ID, models.Breadcrumb(created.Tab, created.Section, created.Category))
			return nil
		},
	}
	addCmd.Flags().StringVar(&in.Tab, "tab", "", "Tab (default Custom)")
	addCmd.Flags().StringVar(&in.Section, "section", "", "Section (default My Ideas)")
	addCmd.Flags().StringVar(&in.Category, "category", "", "Category (default General)")

	var format string
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List custom prompts in the order they were added",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatTable, formatIDs); err != nil {
				return err
			}
			return formatCustom(cmd.OutOrStdout(), a.service, a.service.CustomPrompts(), format)
		},
	}
	listCmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, table or ids")

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a custom prompt",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.RemoveCustom(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, rmCmd)
	return cmd
}

// readText joins args, or reads all of r when args is empty or "-"
func readText(r io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	first := true
	for scanner.Scan() {
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(scanner.Text())
		first = false
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read prompt text: %w", err)
	}
	return b.String(), nil
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export custom prompts as JSON",
		Long: `Export every custom prompt as a pretty-printed JSON array. Use
--output - to write to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if output == "-" {
				return a.service.ExportCustom(out)
			}

			path, err := a.service.ExportCustomFile(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %d custom prompts to %s\n", len(a.service.CustomPrompts()), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", transfer.DefaultExportFile, "Output file, or - for stdout")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import custom prompts from a JSON export",
		Long: `Import custom prompts from a JSON array. Imports are additive: every
accepted row becomes a new custom prompt with a new id. Rows with blank
text are skipped. Use - to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res transfer.Result
			var err error
			if args[0] == "-" {
				res, err = a.service.ImportCustom(cmd.InOrStdin())
			} else {
				res, err = a.service.ImportCustomFile(args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Rejected {
				fmt.Fprintln(a.stderr, "Warning: import document is not a JSON array, nothing imported")
				return nil
			}
			fmt.Fprintf(out, "Imported %d custom prompts", len(res.Added))
			if res.Skipped > 0 {
				fmt.Fprintf(out, ", skipped %d", res.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				switch args[0] {
				case "dark":
					a.service.SetDark(true)
				case "light":
					a.service.SetDark(false)
				case "toggle":
					a.service.ToggleDark()
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), themeName(a.service.Dark()))
			return nil
		},
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func newFetchCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the catalog into the local cache",
		Long: `Load the catalog from the configured URL or file into the local cache.
A cached catalog is kept unless --force is given; a failed fetch leaves
the cache untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.LoadCatalog(cmd.Context(), force); err != nil {
				return err
			}
			c := a.service.Catalog()
			source := "cache"
			if a.loader != nil {
				source = a.loader.Source().String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog: %d tabs, %d prompts (%s)\n", len(c), c.PromptCount(), source)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Fetch even when a catalog is cached")
	return cmd
}

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the offline response cache",
		Long: `The offline cache keeps the last response for every GET request sent to
the catalog origin, so the catalog stays available without a network.`,
	}

	installCmd := &cobra.Command{
		Use:   "install [path...]",
		Short: "Pre-populate the cache with the app shell and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			shim, err := a.requireShim()
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths = offline.ShellPaths
			}
			if err := shim.Install(cmd.Context(), paths...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d paths from %s\n", len(paths), shim.Origin())
			return nil
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shim, err := a.requireShim()
			if err != nil {
				return err
			}
			n, err := shim.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached responses\n", n)
			return nil
		},
	}

	cmd.AddCommand(installCmd, purgeCmd)
	return cmd
}

func (a *app) requireShim() (*offline.Shim, error) {
	if a.shim == nil {
		return nil, apperrors.ValidationError("offline cache is disabled").
			WithDetails("it needs a catalog URL and catalog.offline: true")
	}
	return a.shim, nil
}

// stdinIsTerminal reports whether standard input is interactive
func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
