// Package cli implements the prompt-vault command line. Running it without
// a subcommand starts the terminal UI.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/config"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/loader"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/offline"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/vault"
)

// Version is set at build time
var Version = "0.2.0"

// Command annotations read by the root pre-run hook
const (
	annotationNoSetup   = "prompt-vault/no-setup"
	annotationLogStderr = "prompt-vault/log-stderr"
)

// app holds the dependencies shared by every command of one invocation
type app struct {
	// Persistent flags
	cfgFile  string
	home     string
	backend  string
	logLevel string
	catalog  string

	manager *config.Manager
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Backend
	shim    *offline.Shim
	loader  *loader.Loader
	service *service.Service
	errors  *apperrors.CLIErrorHandler
	stderr  io.Writer
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	rootCmd, _ := newRootCommand()
	return rootCmd
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "prompt-vault",
		Short: "Browse, search and copy prompts from a prompt catalog",
		Long: `prompt-vault - a personal prompt library

Browse a read-only catalog of prompts organized by tab, section and
category, keep favorites, add your own prompts and move them between
machines with export and import.

Run without a command to start the interactive browser.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			if cmd.Annotations[annotationNoSetup] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default: ./config.yaml or <home>/config.yaml)")
	flags.StringVar(&a.home, "home", "", "Data directory (default: ~/.prompt-vault)")
	flags.StringVar(&a.backend, "backend", "", "Storage backend: file, sqlite or memory")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.catalog, "catalog", "", "Catalog URL or local JSON/YAML file")

	rootCmd.AddCommand(
		newTUICmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newShowCmd(a),
		newCopyCmd(a),
		newFavCmd(a),
		newCustomCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newThemeCmd(a),
		newFetchCmd(a),
		newCacheCmd(a),
		newValidateCmd(a),
		newLabelCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)

	return rootCmd, a
}

// Execute runs the command line with ctx and prints a formatted error
func Execute(ctx context.Context, args []string) error {
	rootCmd, a := newRootCommand()
	// PersistentPostRun is skipped when a command fails
	defer a.teardown()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		handler := a.errors
		if handler == nil {
			handler = apperrors.NewCLIErrorHandler(false, nil)
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), handler.FormatError(err))
	}
	return err
}

// setup loads configuration and wires storage, the vault, the catalog
// loader and the service
func (a *app) setup(cmd *cobra.Command) error {
	manager, err := config.NewManager(a.cfgFile)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Failed to load configuration")
	}
	if err := a.applyFlags(manager); err != nil {
		return err
	}
	a.manager = manager
	a.cfg = manager.Get()

	logOpts := logging.Options{Level: a.cfg.LogLevel, File: a.cfg.LogFile()}
	if cmd.Annotations[annotationLogStderr] == "true" {
		logOpts.File = ""
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Failed to initialize logging")
	}
	a.logger = logger
	a.errors = apperrors.NewCLIErrorHandler(a.cfg.LogLevel == "debug", logger)

	store, err := storage.Open(storage.Kind(a.cfg.Backend), a.cfg.Home)
	if err != nil {
		return apperrors.StorageError("open "+a.cfg.Backend+" backend", err)
	}
	a.store = store

	v := vault.New(store, vault.WithLogger(logger.Named("vault")))

	a.loader, err = a.newLoader(v)
	if err != nil {
		return err
	}

	a.service = service.NewService(v, a.loader,
		service.WithLogger(logger.Named("service")),
		service.WithLabelFormatter(a.cfg.Labels.Formatter()),
		service.WithImportDefaults(a.cfg.Import),
	)

	logger.Debug("vault ready",
		zap.String("command", cmd.CommandPath()),
		zap.String("home", a.cfg.Home),
		zap.String("backend", a.cfg.Backend),
		zap.String("config", manager.ConfigFile()))
	return nil
}

// applyFlags lets explicitly set persistent flags override the config file
func (a *app) applyFlags(manager *config.Manager) error {
	overrides := map[string]string{
		"home":      a.home,
		"backend":   a.backend,
		"log_level": a.logLevel,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := manager.Set(key, value); err != nil {
			return err
		}
	}

	if a.catalog == "" {
		return nil
	}
	if isURL(a.catalog) {
		if err := manager.Set("catalog.file", ""); err != nil {
			return err
		}
		return manager.Set("catalog.url", a.catalog)
	}
	return manager.Set("catalog.file", a.catalog)
}

// newLoader builds the catalog loader. URL sources go through the offline
// shim when it is enabled so a cached catalog survives losing the network.
func (a *app) newLoader(store loader.CatalogStore) (*loader.Loader, error) {
	cc := a.cfg.Catalog
	source := loader.Source{URL: cc.URL, File: cc.File}
	if source.File == "" && source.URL == "" {
		return nil, nil
	}

	opts := []loader.Option{
		loader.WithLogger(a.logger.Named("loader")),
		loader.WithRetry(cc.Retries, 500*time.Millisecond),
	}

	if source.File == "" && cc.Offline {
		origin, err := originOf(source.URL)
		if err != nil {
			return nil, apperrors.ValidationError("invalid catalog URL").WithDetails(source.URL)
		}
		shim, err := offline.New(origin, a.store, offline.WithLogger(a.logger.Named("offline")))
		if err != nil {
			return nil, err
		}
		a.shim = shim
		opts = append(opts, loader.WithClient(shim.Client(cc.Timeout)))
	}

	return loader.New(source, store, opts...), nil
}

func (a *app) teardown() {
	if a.shim != nil {
		if err := a.shim.Close(); err != nil {
			a.logger.Warn("offline cache close failed", zap.Error(err))
		}
		a.shim = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("storage close failed", zap.Error(err))
		}
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// loadCatalog makes a catalog available to read-only commands. A failed
// fetch is reported and the cached catalog, possibly empty, is used.
func (a *app) loadCatalog(ctx context.Context) {
	if err := a.service.LoadCatalog(ctx, false); err != nil {
		fmt.Fprintln(a.stderr, a.errors.FormatError(err))
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %s", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
