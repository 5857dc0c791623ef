package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/catalog"
	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/loader"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/transfer"
	"github.com/dpshade/prompt-vault/internal/vault"
)

const catalogJSON = `[
 {"tab":"Work","sections":[
  {"section":"Email","categories":[{"category":"Cold Outreach","prompts":["Write a follow-up","Draft an intro"]}]},
  {"section":"","categories":[{"category":"","prompts":["Untitled idea"]}]}
 ]},
 {"tab":"Home","sections":[{"section":"Cooking","categories":[{"category":"Dinner","prompts":["Plan a menu"]}]}]}
]`

func newTestService(t *testing.T) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogJSON))
	}))
	t.Cleanup(srv.Close)

	v := vault.New(storage.NewMemoryBackend())
	svc := NewService(v, loader.New(loader.Source{URL: srv.URL}, v))
	require.NoError(t, svc.LoadCatalog(context.Background(), false))
	return svc
}

func TestLoadCatalogFlattens(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, []string{"Work", "Home"}, svc.Tabs())
	assert.Len(t, svc.ListPrompts(), 4)
	assert.Len(t, svc.PromptsInTab("Home"), 1)

	first := svc.ListPrompts()[0]
	assert.Equal(t, catalog.DeriveID("Work", "Email", "Cold Outreach", "Write a follow-up"), first.ID)

	got, err := svc.GetPrompt(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = svc.GetPrompt("p-missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestServiceWithoutLoaderUsesCache(t *testing.T) {
	v := vault.New(storage.NewMemoryBackend())
	svc := NewService(v, nil)
	assert.Error(t, svc.LoadCatalog(context.Background(), false))

	v.SetCatalog(models.Catalog{{Name: "Cached", Sections: []models.Section{{Name: "S", Categories: []models.Category{{Name: "C", Prompts: []string{"x"}}}}}}})
	svc = NewService(v, nil)
	require.NoError(t, svc.LoadCatalog(context.Background(), false))
	assert.Len(t, svc.ListPrompts(), 1)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	res := svc.SearchPrompts("  COOKING ")
	require.Len(t, res, 1)
	assert.Equal(t, "Plan a menu", res[0].Text)

	assert.Len(t, svc.SearchPrompts("   "), 4)
	assert.NotEmpty(t, svc.FuzzySearchPrompts("flwup"))
}

func TestFavoritesGrouped(t *testing.T) {
	svc := newTestService(t)
	records := svc.ListPrompts()

	assert.True(t, svc.ToggleFavorite(records[2].ID))
	assert.True(t, svc.ToggleFavorite(records[0].ID))
	assert.True(t, svc.IsFavorite(records[0].ID))

	favs := svc.FavoritePrompts()
	require.Len(t, favs, 2)
	assert.Equal(t, records[0].ID, favs[0].ID, "favorites keep catalog order")

	groups := svc.FavoriteGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Email", groups[0].Name)
	assert.Equal(t, catalog.UnknownSection, groups[1].Name)
	assert.Equal(t, catalog.UnknownCategory, groups[1].Categories[0].Name)

	svc.ClearFavorites()
	assert.Empty(t, svc.FavoritePrompts())
}

func TestCustomPrompts(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddCustom(models.CustomInput{Text: "   "})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	p, err := svc.AddCustom(models.CustomInput{Text: "My idea"})
	require.NoError(t, err)
	assert.Equal(t, "Custom", p.Tab)
	assert.Equal(t, "My Ideas", p.Section)
	assert.Equal(t, "General", p.Category)

	text, err := svc.PromptText(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "My idea", text)

	require.NoError(t, svc.RemoveCustom(p.ID))
	assert.True(t, apperrors.HasCode(svc.RemoveCustom(p.ID), apperrors.ErrCodeNotFound))
	_, err = svc.PromptText(p.ID)
	assert.Error(t, err)
}

func TestImportExport(t *testing.T) {
	svc := newTestService(t)
	svc.SetImportDefaults(transfer.Defaults{Tab: "Imported", Section: "Mine Prompter", Category: "General"})

	res, err := svc.ImportCustom(strings.NewReader(`[{"text":"Hello"},{"text":""}]`))
	require.NoError(t, err)
	assert.Len(t, res.Added, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "Imported", svc.CustomPrompts()[0].Tab)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCustom(&buf))
	assert.Contains(t, buf.String(), `"text": "Hello"`)
}

func TestLabelsAndTheme(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, "SEO for the Web", svc.FormatLabel("seo  for THE\nweb"))

	svc.SetLabelFormatter(catalog.NewLabelFormatter(nil, nil, nil))
	assert.Equal(t, "Seo For The Web", svc.FormatLabel("seo for the web"))

	assert.False(t, svc.Dark())
	assert.True(t, svc.ToggleDark())
	svc.SetDark(false)
	assert.False(t, svc.Dark())
}
