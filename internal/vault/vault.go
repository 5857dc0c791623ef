// Package vault holds the user's local state: theme preference, the cached
// catalog, the favorite set and the custom prompts. Each slice is hydrated
// from the storage backend once at construction and written back in full on
// every mutation.
//
// Persistence is best effort. Hydration falls back to the slice default
// when a key is absent or unreadable, and write failures are logged and
// dropped; the in-memory state stays authoritative for the process.
package vault

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
)

// Storage keys, one per slice
const (
	KeyDark      = "pv_dark"
	KeyCatalog   = "pv_json"
	KeyFavorites = "pv_favs"
	KeyCustom    = "pv_custom"
)

// Keys lists every key the vault owns
var Keys = []string{KeyDark, KeyCatalog, KeyFavorites, KeyCustom}

// CustomIDPrefix tags generated custom prompt ids
const CustomIDPrefix = "c"

// NewCustomID returns an opaque, time-ordered id for a custom prompt. It is
// not derived from content: adding the same text twice yields two ids.
func NewCustomID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return CustomIDPrefix + strings.ReplaceAll(id.String(), "-", "")
}

// Vault is the single state holder, constructed once at startup and passed
// to the interfaces that need it.
type Vault struct {
	mu      sync.RWMutex
	backend storage.Backend
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	dark      bool
	catalog   models.Catalog
	hasCat    bool
	favorites map[string]bool
	custom    []models.CustomPrompt
}

// Option configures a Vault
type Option func(*Vault)

// WithLogger sets the diagnostic sink for hydration and write failures
func WithLogger(logger *zap.Logger) Option {
	return func(v *Vault) { v.logger = logging.OrNop(logger) }
}

// WithClock overrides the timestamp source for custom prompts
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// WithIDGenerator overrides the custom prompt id generator
func WithIDGenerator(newID func() string) Option {
	return func(v *Vault) { v.newID = newID }
}

// New hydrates a vault from backend. It never fails.
func New(backend storage.Backend, opts ...Option) *Vault {
	v := &Vault{
		backend:   backend,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     NewCustomID,
		favorites: make(map[string]bool),
		custom:    []models.CustomPrompt{},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.hydrate()
	return v
}

func (v *Vault) hydrate() {
	if raw, ok := v.read(KeyDark); ok {
		v.dark = strings.TrimSpace(string(raw)) == "true"
	}

	if raw, ok := v.read(KeyCatalog); ok {
		var c models.Catalog
		if err := json.Unmarshal(raw, &c); err != nil {
			v.logHydrate(KeyCatalog, err)
		} else {
			// A cached null is no catalog; the loader fetches again
			v.catalog, v.hasCat = c, c != nil
		}
	}

	if raw, ok := v.read(KeyFavorites); ok {
		var favs map[string]interface{}
		if err := json.Unmarshal(raw, &favs); err != nil {
			v.logHydrate(KeyFavorites, err)
		} else {
			for id, on := range favs {
				if truthy(on) {
					v.favorites[id] = true
				}
			}
		}
	}

	if raw, ok := v.read(KeyCustom); ok {
		var custom []models.CustomPrompt
		if err := json.Unmarshal(raw, &custom); err != nil {
			v.logHydrate(KeyCustom, err)
		} else if custom != nil {
			v.custom = custom
		}
	}

	v.logger.Debug("vault hydrated",
		zap.Bool("dark", v.dark),
		zap.Bool("catalog", v.hasCat),
		zap.Int("favorites", len(v.favorites)),
		zap.Int("custom", len(v.custom)))
}

// truthy reports whether a decoded JSON value marks a favorite: false,
// null, zero and the empty string do not
func truthy(value interface{}) bool {
	switch x := value.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func (v *Vault) read(key string) ([]byte, bool) {
	if v.backend == nil {
		return nil, false
	}
	raw, ok, err := v.backend.Get(key)
	if err != nil {
		v.logHydrate(key, err)
		return nil, false
	}
	return raw, ok
}

func (v *Vault) logHydrate(key string, err error) {
	v.logger.Warn("ignoring unreadable persisted state",
		zap.String("key", key),
		zap.Error(apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted, "hydrate "+key)))
}

// persist writes one slice; failures are logged and swallowed
func (v *Vault) persist(key string, value interface{}) {
	if v.backend == nil {
		return
	}
	var raw []byte
	switch val := value.(type) {
	case []byte:
		raw = val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			v.logger.Error("failed to encode vault slice", zap.String("key", key), zap.Error(err))
			return
		}
		raw = data
	}
	if err := v.backend.Set(key, raw); err != nil {
		v.logger.Warn("vault write dropped", zap.String("key", key),
			zap.Error(apperrors.StorageError("set "+key, err)))
	}
}

func (v *Vault) remove(key string) {
	if v.backend == nil {
		return
	}
	if err := v.backend.Remove(key); err != nil {
		v.logger.Warn("vault remove dropped", zap.String("key", key),
			zap.Error(apperrors.StorageError("remove "+key, err)))
	}
}

// Dark reports the theme preference
func (v *Vault) Dark() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dark
}

// SetDark sets and persists the theme preference
func (v *Vault) SetDark(dark bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dark = dark
	v.persist(KeyDark, []byte(boolString(dark)))
}

// ToggleDark flips the theme preference and returns the new value
func (v *Vault) ToggleDark() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dark = !v.dark
	v.persist(KeyDark, []byte(boolString(v.dark)))
	return v.dark
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Catalog returns the cached catalog, or nil when none has been loaded
func (v *Vault) Catalog() models.Catalog {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.catalog
}

// HasCatalog reports whether a catalog has been cached
func (v *Vault) HasCatalog() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hasCat
}

// SetCatalog caches the last successfully fetched catalog
func (v *Vault) SetCatalog(c models.Catalog) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.catalog, v.hasCat = c, c != nil
	v.persist(KeyCatalog, c)
}

// ToggleFavorite flips membership of id and returns whether it is now a
// favorite.
func (v *Vault) ToggleFavorite(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.favorites[id] {
		delete(v.favorites, id)
	} else {
		v.favorites[id] = true
	}
	v.persist(KeyFavorites, v.favorites)
	return v.favorites[id]
}

// IsFavorite reports whether id is in the favorite set
func (v *Vault) IsFavorite(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.favorites[id]
}

// ClearFavorites empties the set and removes its storage key
func (v *Vault) ClearFavorites() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.favorites = make(map[string]bool)
	v.remove(KeyFavorites)
}

// FavoriteIDs returns the favorite ids sorted
func (v *Vault) FavoriteIDs() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ids := make([]string, 0, len(v.favorites))
	for id := range v.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddCustom appends a new custom prompt with a fresh id and timestamp
func (v *Vault) AddCustom(in models.CustomInput) models.CustomPrompt {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := models.CustomPrompt{
		ID:        v.newID(),
		Tab:       in.Tab,
		Section:   in.Section,
		Category:  in.Category,
		Text:      in.Text,
		CreatedAt: v.now().UnixMilli(),
	}
	v.custom = append(v.custom, p)
	v.persist(KeyCustom, v.custom)
	return p
}

// RemoveCustom deletes the custom prompt with id and reports whether one
// was removed. The list is persisted either way.
func (v *Vault) RemoveCustom(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := make([]models.CustomPrompt, 0, len(v.custom))
	for _, p := range v.custom {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(v.custom)
	v.custom = kept
	v.persist(KeyCustom, v.custom)
	return removed
}

// CustomPrompts returns a copy of the custom prompts in insertion order
func (v *Vault) CustomPrompts() []models.CustomPrompt {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.CustomPrompt, len(v.custom))
	copy(out, v.custom)
	return out
}
