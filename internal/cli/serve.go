package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/prompt-vault/internal/config"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/loader"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app, the catalog document and the JSON API",
		Long: `Start the prompt vault HTTP server.

The server provides:
  - /, /index.html, /manifest.webmanifest  the browser app
  - /prompts.json                          the cached catalog document
  - /api/...                               prompts, favorites, custom prompts, theme
  - /health                                health check

Label tables and import defaults are reloaded when the config file changes.
With --watch a file catalog is reloaded whenever it is saved.`,
		Example: `  prompt-vault serve
  prompt-vault serve --addr 0.0.0.0:8787 --catalog ./prompts.yaml --watch`,
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			annotationLogStderr: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			switch {
			case a.loader != nil && servesOwnCatalog(a.loader.Source(), addr):
				a.logger.Warn("catalog url points at this server, not fetching; set --catalog or catalog.url to a real source",
					zap.String("url", a.loader.Source().URL),
					zap.String("addr", addr),
					zap.Bool("cached", a.service.Catalog() != nil))
			default:
				if err := a.service.LoadCatalog(ctx, false); err != nil {
					a.logger.Warn("serving without a fresh catalog", zap.Error(err))
				}
			}

			if a.manager.ConfigFile() != "" {
				a.manager.OnChange(func(cfg *config.Config) {
					a.service.SetLabelFormatter(cfg.Labels.Formatter())
					a.service.SetImportDefaults(cfg.Import)
					a.logger.Info("configuration reloaded", zap.String("file", a.manager.ConfigFile()))
				})
				a.manager.WatchConfig()
			}

			if watch {
				if a.loader == nil || a.loader.Source().File == "" {
					return apperrors.ValidationError("--watch needs a catalog file")
				}
				go func() {
					if err := a.loader.Watch(ctx, func(c models.Catalog) {
						a.service.CatalogChanged(c)
					}); err != nil {
						a.logger.Error("catalog watcher stopped", zap.Error(err))
					}
				}()
			}

			return runServer(ctx, server.NewServer(a.service, addr, a.logger.Named("server")), a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8787)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload a file catalog when it changes")
	return cmd
}

// servesOwnCatalog reports whether src is a URL on the address the server
// is about to listen on. Fetching it would only ask the server for the
// catalog it has not loaded yet.
func servesOwnCatalog(src loader.Source, addr string) bool {
	if src.File != "" || src.URL == "" {
		return false
	}
	u, err := url.Parse(src.URL)
	if err != nil || u.Host == "" {
		return false
	}
	urlHost, urlPort := u.Hostname(), u.Port()
	if urlPort == "" {
		urlPort = "80"
		if u.Scheme == "https" {
			urlPort = "443"
		}
	}

	listenHost, listenPort, err := net.SplitHostPort(addr)
	if err != nil || listenPort != urlPort {
		return false
	}
	if listenHost == "" || listenHost == "0.0.0.0" || listenHost == "::" {
		return isLoopback(urlHost)
	}
	return urlHost == listenHost || (isLoopback(urlHost) && isLoopback(listenHost))
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// runServer serves until ctx is cancelled, then shuts down gracefully
func runServer(ctx context.Context, srv *server.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-errCh
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationNoSetup: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				home := a.home
				if home == "" {
					home = config.DefaultConfig().Home
				}
				path = filepath.Join(home, "config.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return apperrors.ValidationError(path + " already exists").WithDetails("use --force to overwrite")
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&path, "path", "p", "", "Where to write (default <home>/config.yaml)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if file := a.manager.ConfigFile(); file != "" {
				fmt.Fprintf(out, "# %s\n", file)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
