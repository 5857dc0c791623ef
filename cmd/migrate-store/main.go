// Command migrate-store copies the vault from one storage backend to another,
// for example when switching a data directory from the file backend to sqlite.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/prompt-vault/internal/config"
	"github.com/dpshade/prompt-vault/internal/storage"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var home, from, to string
	var yes bool

	cmd := &cobra.Command{
		Use:   "migrate-store",
		Short: "Copy the vault between storage backends",
		Example: `  migrate-store --from file --to sqlite
  migrate-store --home /tmp/vault --from sqlite --to file --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == to {
				return fmt.Errorf("--from and --to are both %q", from)
			}
			if home == "" {
				home = config.DefaultConfig().Home
			}
			out := cmd.OutOrStdout()

			src, err := storage.Open(storage.Kind(from), home)
			if err != nil {
				return fmt.Errorf("open %s backend: %w", from, err)
			}
			defer src.Close()

			keys, err := src.Keys()
			if err != nil {
				return fmt.Errorf("list %s keys: %w", from, err)
			}
			if len(keys) == 0 {
				fmt.Fprintf(out, "No keys in the %s backend - migration not needed\n", from)
				return nil
			}

			fmt.Fprintf(out, "Found %d keys in the %s backend at %s:\n", len(keys), from, home)
			for _, key := range keys {
				fmt.Fprintf(out, "  - %s\n", key)
			}

			if !yes {
				fmt.Fprintf(out, "\nCopy them into the %s backend? Existing values are overwritten. (y/N): ", to)
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.ToLower(strings.TrimSpace(response)) != "y" {
					fmt.Fprintln(out, "Migration cancelled")
					return nil
				}
			}

			dst, err := storage.Open(storage.Kind(to), home)
			if err != nil {
				return fmt.Errorf("open %s backend: %w", to, err)
			}
			defer dst.Close()

			copied, err := storage.Copy(dst, src)
			if err != nil {
				return fmt.Errorf("copied %d keys before failing: %w", copied, err)
			}

			fmt.Fprintf(out, "Migration completed! Copied %d keys from %s to %s\n", copied, from, to)
			fmt.Fprintf(out, "Set backend: %s in your config to use it.\n", to)
			return nil
		},
	}

	cmd.Flags().StringVar(&home, "home", "", "Data directory (default: ~/.prompt-vault)")
	cmd.Flags().StringVar(&from, "from", string(storage.KindFile), "Source backend: file or sqlite")
	cmd.Flags().StringVar(&to, "to", string(storage.KindSQLite), "Destination backend: file or sqlite")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
