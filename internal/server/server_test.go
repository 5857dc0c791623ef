package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/offline"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/vault"
)

func sampleCatalog() models.Catalog {
	return models.Catalog{
		{Name: "Work", Sections: []models.Section{
			{Name: "Email", Categories: []models.Category{{Name: "Cold Outreach", Prompts: []string{"Write a follow-up", "Draft an intro"}}}},
		}},
		{Name: "Home", Sections: []models.Section{
			{Name: "Cooking", Categories: []models.Category{{Name: "Dinner", Prompts: []string{"Plan a menu"}}}},
		}},
	}
}

type apiResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	v := vault.New(storage.NewMemoryBackend())
	v.SetCatalog(sampleCatalog())
	svc := service.NewService(v, nil)

	ts := httptest.NewServer(NewServer(svc, "", nil).Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

func do(t *testing.T, method, url, body string) (*http.Response, apiResult) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res apiResult
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(data, &res)
	}
	return resp, res
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndShell(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, res := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, res.Success)

	for _, path := range offline.ShellPaths {
		resp, _ := do(t, http.MethodGet, ts.URL+path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestCatalogDocumentRoundTrips(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/prompts.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	c, err := catalog.Parse(data, catalog.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), c)
}

func TestPromptsBrowseAndSearch(t *testing.T) {
	ts, _ := newTestServer(t)

	_, res := do(t, http.MethodGet, ts.URL+"/api/tabs", "")
	assert.Equal(t, []string{"Work", "Home"}, decode[[]string](t, res.Data))

	_, res = do(t, http.MethodGet, ts.URL+"/api/prompts?tab=Home", "")
	assert.Len(t, decode[[]PromptView](t, res.Data), 1)

	_, res = do(t, http.MethodGet, ts.URL+"/api/prompts?tab=Home&q=outreach", "")
	found := decode[[]PromptView](t, res.Data)
	require.Len(t, found, 2, "search spans every tab")
	assert.Equal(t, "Write a follow-up", found[0].Text)

	_, res = do(t, http.MethodGet, ts.URL+"/api/prompts?q=%20%20", "")
	assert.Len(t, decode[[]PromptView](t, res.Data), 3)

	id := found[0].ID
	resp, res := do(t, http.MethodGet, ts.URL+"/api/prompts/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decode[PromptView](t, res.Data).ID)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/prompts/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFavorites(t *testing.T) {
	ts, svc := newTestServer(t)
	id := svc.ListPrompts()[2].ID

	_, res := do(t, http.MethodPost, ts.URL+"/api/favorites/"+id, "")
	assert.Equal(t, true, decode[map[string]interface{}](t, res.Data)["favorite"])

	_, res = do(t, http.MethodGet, ts.URL+"/api/favorites", "")
	favs := decode[[]PromptView](t, res.Data)
	require.Len(t, favs, 1)
	assert.True(t, favs[0].Favorite)

	_, res = do(t, http.MethodGet, ts.URL+"/api/favorites/groups", "")
	groups := decode[[]catalog.SectionGroup](t, res.Data)
	require.Len(t, groups, 1)
	assert.Equal(t, "Cooking", groups[0].Name)

	do(t, http.MethodDelete, ts.URL+"/api/favorites", "")
	assert.False(t, svc.IsFavorite(id))
}

func TestCustomPromptLifecycle(t *testing.T) {
	ts, svc := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/custom", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/custom", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, res := do(t, http.MethodPost, ts.URL+"/api/custom", `{"tab":"Mine","text":"Hello"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.CustomPrompt](t, res.Data)
	assert.Equal(t, "Mine", created.Tab)

	exp, err := http.Get(ts.URL + "/api/custom/export")
	require.NoError(t, err)
	body, _ := io.ReadAll(exp.Body)
	exp.Body.Close()
	assert.Contains(t, exp.Header.Get("Content-Disposition"), "custom-prompts.json")

	_, res = do(t, http.MethodPost, ts.URL+"/api/custom/import", string(body))
	assert.True(t, res.Success)
	assert.Len(t, svc.CustomPrompts(), 2)

	_, res = do(t, http.MethodPost, ts.URL+"/api/custom/import", `{"text":"x"}`)
	assert.Contains(t, res.Message, "not an array")

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/custom/import", `[`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/custom/"+created.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/custom/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThemeAndLabels(t *testing.T) {
	ts, svc := newTestServer(t)

	_, res := do(t, http.MethodPut, ts.URL+"/api/theme", `{"dark":true}`)
	assert.True(t, decode[models.Preferences](t, res.Data).Dark)
	assert.True(t, svc.Dark())

	_, res = do(t, http.MethodGet, ts.URL+"/api/labels?text=faqs+for+seo", "")
	assert.Equal(t, "FAQs for SEO", decode[map[string]string](t, res.Data)["label"])

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/labels", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := do(t, http.MethodOptions, ts.URL+"/api/custom", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestReloadWithoutSource(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/catalog/reload", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "cached catalog satisfies a reload without a source")
}

func TestOfflineShimServesShell(t *testing.T) {
	ts, _ := newTestServer(t)
	shim, err := offline.New(ts.URL, storage.NewMemoryBackend())
	require.NoError(t, err)
	defer shim.Close()

	require.NoError(t, shim.Install(context.Background()))
	resp, err := shim.Client(0).Get(ts.URL + "/prompts.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "hit", resp.Header.Get(offline.CacheHeader))
}
