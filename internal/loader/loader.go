// Package loader fetches the catalog document from a URL or a local file
// and caches the result in the vault.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/catalog"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/models"
)

// Source locates the catalog. File wins over URL when both are set.
type Source struct {
	URL  string
	File string
}

func (s Source) String() string {
	if s.File != "" {
		return s.File
	}
	return s.URL
}

// CatalogStore is the vault's catalog cache slice
type CatalogStore interface {
	HasCatalog() bool
	Catalog() models.Catalog
	SetCatalog(models.Catalog)
}

// Loader loads catalogs into a CatalogStore
type Loader struct {
	source   Source
	store    CatalogStore
	client   *http.Client
	logger   *zap.Logger
	attempts uint
	delay    time.Duration
	debounce time.Duration
}

// Option configures a Loader
type Option func(*Loader)

// WithClient sets the HTTP client, typically one routed through the
// offline shim
func WithClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logging.OrNop(logger) }
}

// WithRetry sets the number of fetch attempts and the base delay
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(l *Loader) {
		if attempts == 0 {
			attempts = 1
		}
		l.attempts, l.delay = attempts, delay
	}
}

// WithDebounce sets how long Watch waits for writes to settle
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) { l.debounce = d }
}

// New creates a loader for source
func New(source Source, store CatalogStore, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		store:    store,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   zap.NewNop(),
		attempts: 3,
		delay:    500 * time.Millisecond,
		debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns where the loader reads from
func (l *Loader) Source() Source {
	return l.source
}

// Fetch reads and parses the catalog without touching the store
func (l *Loader) Fetch(ctx context.Context) (models.Catalog, error) {
	if l.source.File != "" {
		c, err := catalog.ParseFile(l.source.File)
		if err != nil {
			return nil, apperrors.ParseError("catalog file", err).WithContext("file", l.source.File)
		}
		return c, nil
	}
	if l.source.URL == "" {
		return nil, apperrors.ValidationError("no catalog source configured")
	}

	var data []byte
	err := retry.Do(
		func() error {
			body, err := l.get(ctx)
			if err != nil {
				return err
			}
			data = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Debug("retrying catalog fetch", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, apperrors.NetworkError("fetch catalog", err).WithContext("url", l.source.URL)
	}

	c, err := catalog.Parse(data, catalog.FormatJSON)
	if err != nil {
		return nil, apperrors.ParseError("catalog document", err).WithContext("url", l.source.URL)
	}
	return c, nil
}

func (l *Loader) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source.URL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// Ensure returns the cached catalog, fetching it first when none is cached
// or force is set. A failed fetch leaves the cache untouched and returns
// whatever was cached alongside the error.
func (l *Loader) Ensure(ctx context.Context, force bool) (models.Catalog, error) {
	if l.store.HasCatalog() && !force {
		return l.store.Catalog(), nil
	}

	c, err := l.Fetch(ctx)
	if err != nil {
		l.logger.Warn("catalog load failed", zap.Stringer("source", l.source), zap.Error(err))
		return l.store.Catalog(), err
	}

	l.store.SetCatalog(c)
	l.logger.Info("catalog loaded",
		zap.Stringer("source", l.source),
		zap.Int("tabs", len(c)),
		zap.Int("prompts", c.PromptCount()))
	return c, nil
}

// Watch reloads a file source whenever it changes until ctx is done.
// onChange runs after each successful reload.
func (l *Loader) Watch(ctx context.Context, onChange func(models.Catalog)) error {
	if l.source.File == "" {
		return apperrors.ValidationError("only file catalogs can be watched")
	}
	path, err := filepath.Abs(l.source.File)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	timer := time.NewTimer(l.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(l.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("catalog watcher error", zap.Error(err))
		case <-timer.C:
			c, err := l.Ensure(ctx, true)
			if err != nil {
				continue
			}
			if onChange != nil {
				onChange(c)
			}
		}
	}
}
