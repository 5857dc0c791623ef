package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/catalog"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/loader"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/transfer"
	"github.com/dpshade/prompt-vault/internal/vault"
)

// Service provides the prompt vault operations shared by the CLI, the
// HTTP server and the TUI
type Service struct {
	vault  *vault.Vault
	loader *loader.Loader
	logger *zap.Logger

	mu             sync.RWMutex
	records        []models.FlatPrompt // Flattened catalog, rebuilt when the catalog changes
	labels         *catalog.LabelFormatter
	importDefaults transfer.Defaults
	formDefaults   transfer.Defaults
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}

// WithLabelFormatter replaces the default label tables
func WithLabelFormatter(f *catalog.LabelFormatter) Option {
	return func(s *Service) { s.labels = f }
}

// WithImportDefaults sets the fallbacks for imported rows
func WithImportDefaults(d transfer.Defaults) Option {
	return func(s *Service) { s.importDefaults = d }
}

// NewService creates a service over v. l may be nil when no catalog source
// is configured; the cached catalog is still served.
func NewService(v *vault.Vault, l *loader.Loader, opts ...Option) *Service {
	s := &Service{
		vault:          v,
		loader:         l,
		logger:         zap.NewNop(),
		labels:         catalog.DefaultLabelFormatter(),
		importDefaults: transfer.DefaultDefaults(),
		formDefaults:   transfer.FormDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.records = catalog.Flatten(v.Catalog())
	return s
}

// LoadCatalog makes sure a catalog is cached, fetching it when none is or
// when force is set. A failed fetch keeps the previous records.
func (s *Service) LoadCatalog(ctx context.Context, force bool) error {
	if s.loader == nil {
		if s.vault.HasCatalog() {
			return nil
		}
		return apperrors.ValidationError("no catalog source configured")
	}

	c, err := s.loader.Ensure(ctx, force)
	if err != nil {
		return err
	}
	s.CatalogChanged(c)
	return nil
}

// CatalogChanged rebuilds the flattened records after the cached catalog
// was replaced outside LoadCatalog, e.g. by a file watcher
func (s *Service) CatalogChanged(c models.Catalog) {
	records := catalog.Flatten(c)
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// Catalog returns the cached catalog
func (s *Service) Catalog() models.Catalog {
	return s.vault.Catalog()
}

// Tabs returns the tab names in catalog order
func (s *Service) Tabs() []string {
	return s.vault.Catalog().TabNames()
}

// ListPrompts returns every flattened catalog prompt
func (s *Service) ListPrompts() []models.FlatPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FlatPrompt(nil), s.records...)
}

// PromptsInTab returns the prompts of one tab
func (s *Service) PromptsInTab(tab string) []models.FlatPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.InTab(s.records, tab)
}

// SearchPrompts filters the catalog by substring. Callers check
// catalog.IsSearching first; a blank query returns everything.
func (s *Service) SearchPrompts(query string) []models.FlatPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Search(s.records, query)
}

// FuzzySearchPrompts ranks the catalog by fuzzy score
func (s *Service) FuzzySearchPrompts(query string) []models.FlatPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.FuzzySearch(s.records, query)
}

// GetPrompt retrieves a catalog prompt by id
func (s *Service) GetPrompt(id string) (models.FlatPrompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := catalog.FindByID(s.records, id)
	if !ok {
		return models.FlatPrompt{}, apperrors.NotFoundError("prompt " + id)
	}
	return p, nil
}

// PromptText returns the text of a catalog or custom prompt
func (s *Service) PromptText(id string) (string, error) {
	if p, err := s.GetPrompt(id); err == nil {
		return p.Text, nil
	}
	for _, c := range s.vault.CustomPrompts() {
		if c.ID == id {
			return c.Text, nil
		}
	}
	return "", apperrors.NotFoundError("prompt " + id)
}

// ToggleFavorite flips a favorite and returns the new state
func (s *Service) ToggleFavorite(id string) bool {
	on := s.vault.ToggleFavorite(id)
	s.logger.Debug("favorite toggled", zap.String("id", id), zap.Bool("favorite", on))
	return on
}

// IsFavorite reports whether id is a favorite
func (s *Service) IsFavorite(id string) bool {
	return s.vault.IsFavorite(id)
}

// ClearFavorites removes every favorite
func (s *Service) ClearFavorites() {
	s.vault.ClearFavorites()
}

// FavoritePrompts returns the favorited catalog prompts in catalog order
func (s *Service) FavoritePrompts() []models.FlatPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FlatPrompt
	for _, r := range s.records {
		if s.vault.IsFavorite(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// FavoriteGroups returns the favorites grouped by section and category
func (s *Service) FavoriteGroups() []catalog.SectionGroup {
	return catalog.GroupBySection(s.FavoritePrompts())
}

// FormDefaults returns the prefilled location of a new custom prompt
func (s *Service) FormDefaults() transfer.Defaults {
	return s.formDefaults
}

// AddCustom creates a custom prompt. Empty location fields take the form
// defaults; blank text is rejected.
func (s *Service) AddCustom(in models.CustomInput) (models.CustomPrompt, error) {
	if strings.TrimSpace(in.Text) == "" {
		return models.CustomPrompt{}, apperrors.ValidationError("prompt text is required")
	}
	p := s.vault.AddCustom(s.formDefaults.Apply(in))
	s.logger.Debug("custom prompt added", zap.String("id", p.ID))
	return p, nil
}

// RemoveCustom deletes a custom prompt
func (s *Service) RemoveCustom(id string) error {
	if !s.vault.RemoveCustom(id) {
		return apperrors.NotFoundError("custom prompt " + id)
	}
	return nil
}

// CustomPrompts returns the custom prompts in insertion order
func (s *Service) CustomPrompts() []models.CustomPrompt {
	return s.vault.CustomPrompts()
}

// ExportCustom writes the custom prompts as JSON
func (s *Service) ExportCustom(w io.Writer) error {
	return transfer.Export(w, s.vault.CustomPrompts())
}

// ExportCustomFile writes the custom prompts to path
func (s *Service) ExportCustomFile(path string) (string, error) {
	return transfer.ExportFile(path, s.vault.CustomPrompts())
}

// ImportCustom merges a JSON document into the custom prompts
func (s *Service) ImportCustom(r io.Reader) (transfer.Result, error) {
	res, err := transfer.Import(r, s.vault, s.ImportDefaults())
	s.logImport(res, err)
	return res, err
}

// ImportCustomFile merges the document at path
func (s *Service) ImportCustomFile(path string) (transfer.Result, error) {
	res, err := transfer.ImportFile(path, s.vault, s.ImportDefaults())
	s.logImport(res, err)
	return res, err
}

func (s *Service) logImport(res transfer.Result, err error) {
	switch {
	case err != nil:
		s.logger.Warn("import failed", zap.Error(err))
	case res.Rejected:
		s.logger.Warn("import ignored: document is not an array")
	default:
		s.logger.Info("import finished", zap.Int("added", len(res.Added)), zap.Int("skipped", res.Skipped))
	}
}

// ImportDefaults returns the current import fallbacks
func (s *Service) ImportDefaults() transfer.Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.importDefaults
}

// SetImportDefaults replaces the import fallbacks
func (s *Service) SetImportDefaults(d transfer.Defaults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importDefaults = d
}

// FormatLabel renders a raw catalog label for display
func (s *Service) FormatLabel(raw string) string {
	s.mu.RLock()
	f := s.labels
	s.mu.RUnlock()
	return f.Format(raw)
}

// SetLabelFormatter swaps the label tables
func (s *Service) SetLabelFormatter(f *catalog.LabelFormatter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = f
}

// Dark reports the theme preference
func (s *Service) Dark() bool {
	return s.vault.Dark()
}

// SetDark sets the theme preference
func (s *Service) SetDark(dark bool) {
	s.vault.SetDark(dark)
}

// ToggleDark flips the theme preference
func (s *Service) ToggleDark() bool {
	return s.vault.ToggleDark()
}
