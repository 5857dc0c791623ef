package vault

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
)

// failingBackend serves reads from an inner backend and rejects every write
type failingBackend struct {
	storage.Backend
}

func (failingBackend) Set(string, []byte) error { return errors.New("quota exceeded") }
func (failingBackend) Remove(string) error      { return errors.New("storage disabled") }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func newTestVault(t *testing.T, backend storage.Backend) *Vault {
	t.Helper()
	return New(backend, WithIDGenerator(sequentialIDs()), WithClock(fixedClock))
}

func TestHydrateEmptyBackend(t *testing.T) {
	v := newTestVault(t, storage.NewMemoryBackend())

	assert.False(t, v.Dark())
	assert.False(t, v.HasCatalog())
	assert.Nil(t, v.Catalog())
	assert.Empty(t, v.FavoriteIDs())
	assert.NotNil(t, v.CustomPrompts())
	assert.Empty(t, v.CustomPrompts())
}

func TestHydrateMalformedStateFallsBackAndLogs(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(KeyDark, []byte("yes")))
	require.NoError(t, backend.Set(KeyCatalog, []byte("{not json")))
	require.NoError(t, backend.Set(KeyFavorites, []byte(`["p1"]`)))
	require.NoError(t, backend.Set(KeyCustom, []byte(`{"id":"c1"}`)))

	core, logs := observer.New(zapcore.WarnLevel)
	v := New(backend, WithLogger(zap.New(core)))

	assert.False(t, v.Dark())
	assert.False(t, v.HasCatalog())
	assert.Empty(t, v.FavoriteIDs())
	assert.Empty(t, v.CustomPrompts())
	assert.Equal(t, 3, logs.FilterMessage("ignoring unreadable persisted state").Len())
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	backend := storage.NewMemoryBackend()
	v := newTestVault(t, backend)

	v.SetDark(true)
	v.SetCatalog(models.Catalog{{Name: "Work"}})
	v.ToggleFavorite("p1")
	v.AddCustom(models.CustomInput{Tab: "Mine", Section: "S", Category: "C", Text: "hello"})

	raw, ok, err := backend.Get(KeyDark)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", string(raw))

	raw, _, _ = backend.Get(KeyFavorites)
	assert.JSONEq(t, `{"p1":true}`, string(raw))

	reloaded := New(backend)
	assert.True(t, reloaded.Dark())
	assert.True(t, reloaded.HasCatalog())
	assert.Equal(t, []string{"Work"}, reloaded.Catalog().TabNames())
	assert.True(t, reloaded.IsFavorite("p1"))
	require.Len(t, reloaded.CustomPrompts(), 1)
	assert.Equal(t, "hello", reloaded.CustomPrompts()[0].Text)
	assert.Equal(t, int64(1700000000000), reloaded.CustomPrompts()[0].CreatedAt)
}

func TestToggleDark(t *testing.T) {
	v := newTestVault(t, storage.NewMemoryBackend())
	assert.True(t, v.ToggleDark())
	assert.False(t, v.ToggleDark())
}

func TestToggleFavoriteTwiceRestoresSet(t *testing.T) {
	v := newTestVault(t, storage.NewMemoryBackend())
	v.ToggleFavorite("p2")
	before := v.FavoriteIDs()

	assert.True(t, v.ToggleFavorite("p1"))
	assert.True(t, v.IsFavorite("p1"))
	assert.False(t, v.ToggleFavorite("p1"))
	assert.False(t, v.IsFavorite("p1"))

	assert.Equal(t, before, v.FavoriteIDs())
}

func TestClearFavoritesRemovesKey(t *testing.T) {
	backend := storage.NewMemoryBackend()
	v := newTestVault(t, backend)
	v.ToggleFavorite("p1")
	v.ToggleFavorite("p2")

	v.ClearFavorites()

	assert.Empty(t, v.FavoriteIDs())
	_, ok, err := backend.Get(KeyFavorites)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCustomPromptsAppendAndRemove(t *testing.T) {
	v := newTestVault(t, storage.NewMemoryBackend())

	first := v.AddCustom(models.CustomInput{Text: "one"})
	second := v.AddCustom(models.CustomInput{Text: "one"})
	assert.NotEqual(t, first.ID, second.ID)

	list := v.CustomPrompts()
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)

	list[0].Text = "mutated"
	assert.Equal(t, "one", v.CustomPrompts()[0].Text)

	assert.True(t, v.RemoveCustom("c1"))
	assert.False(t, v.RemoveCustom("c1"))
	require.Len(t, v.CustomPrompts(), 1)
	assert.Equal(t, "c2", v.CustomPrompts()[0].ID)
}

func TestWriteFailuresKeepMemoryState(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v := New(failingBackend{storage.NewMemoryBackend()},
		WithLogger(zap.New(core)), WithIDGenerator(sequentialIDs()))

	assert.True(t, v.ToggleFavorite("p1"))
	v.SetDark(true)
	p := v.AddCustom(models.CustomInput{Text: "kept"})
	v.ClearFavorites()

	assert.True(t, v.Dark())
	assert.Empty(t, v.FavoriteIDs())
	assert.Equal(t, []models.CustomPrompt{p}, v.CustomPrompts())
	assert.Equal(t, 3, logs.FilterMessage("vault write dropped").Len())
	assert.Equal(t, 1, logs.FilterMessage("vault remove dropped").Len())
}

func TestNilBackend(t *testing.T) {
	v := New(nil)
	v.ToggleFavorite("p1")
	assert.True(t, v.IsFavorite("p1"))
}

func TestNewCustomID(t *testing.T) {
	a, b := NewCustomID(), NewCustomID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^c[0-9a-f]{32}$`, a)
}

func TestNullCatalogIsNotCached(t *testing.T) {
	backend := storage.NewMemoryBackend()
	v := newTestVault(t, backend)

	v.SetCatalog(nil)
	assert.False(t, v.HasCatalog())

	reloaded := New(backend)
	assert.False(t, reloaded.HasCatalog())
	assert.Nil(t, reloaded.Catalog())

	reloaded.SetCatalog(models.Catalog{})
	assert.True(t, reloaded.HasCatalog(), "an empty catalog is still a catalog")
}

func TestHydrateFavoritesKeepsTruthyEntries(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(KeyFavorites,
		[]byte(`{"p1":true,"p2":1,"p3":"yes","p4":false,"p5":0,"p6":"","p7":null,"p8":{}}`)))

	v := New(backend)
	assert.Equal(t, []string{"p1", "p2", "p3", "p8"}, v.FavoriteIDs())
}
