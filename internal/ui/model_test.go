package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/transfer"
	"github.com/dpshade/prompt-vault/internal/vault"
)

func testCatalog() models.Catalog {
	return models.Catalog{
		{Name: "Work", Sections: []models.Section{
			{Name: "Email", Categories: []models.Category{
				{Name: "Cold Outreach", Prompts: []string{"Write a follow-up", "Draft an intro"}},
			}},
		}},
		{Name: "Home", Sections: []models.Section{
			{Name: "Cooking", Categories: []models.Category{
				{Name: "Dinner", Prompts: []string{"Plan a menu"}},
			}},
		}},
	}
}

func newTestModel(t *testing.T) (Model, *service.Service) {
	t.Helper()
	v := vault.New(storage.NewMemoryBackend())
	v.SetCatalog(testCatalog())
	svc := service.NewService(v, nil)

	m := NewModel(svc, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), svc
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func itemIDs(m Model) []string {
	var ids []string
	for _, it := range m.list.Items() {
		ids = append(ids, it.(promptItem).prompt.ID)
	}
	return ids
}

func TestBrowseStartsOnFirstTab(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, []string{"Work", "Home"}, m.tabs)
	assert.Equal(t, []string{
		catalog.DeriveID("Work", "Email", "Cold Outreach", "Write a follow-up"),
		catalog.DeriveID("Work", "Email", "Cold Outreach", "Draft an intro"),
	}, itemIDs(m))
	assert.Contains(t, m.View(), "Prompt Vault")
}

func TestTabSwitching(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "tab")
	assert.Equal(t, 1, m.activeTab)
	assert.Len(t, m.list.Items(), 1)

	m = press(m, "tab")
	assert.Equal(t, 0, m.activeTab, "tabs wrap around")

	m = press(m, "shift+tab")
	assert.Equal(t, 1, m.activeTab)
}

func TestSearchSpansAllTabs(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "/", "menu")
	require.True(t, m.searching)
	assert.Equal(t, []string{catalog.DeriveID("Home", "Cooking", "Dinner", "Plan a menu")}, itemIDs(m))

	m = press(m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "menu", m.search.Value(), "enter keeps the query")

	m = press(m, "esc")
	assert.Empty(t, m.search.Value())
	assert.Len(t, m.list.Items(), 2)
}

func TestBlankSearchShowsCurrentTab(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "/", "   ")
	assert.Len(t, m.list.Items(), 2)
}

func TestFavoriteToggleAndView(t *testing.T) {
	m, svc := newTestModel(t)
	id := itemIDs(m)[0]

	m = press(m, "f")
	assert.True(t, svc.IsFavorite(id))
	assert.True(t, m.list.Items()[0].(promptItem).favorite)

	m = press(m, "2")
	assert.Equal(t, ViewFavorites, m.viewMode)
	assert.Equal(t, []string{id}, itemIDs(m))

	m = press(m, "f")
	assert.False(t, svc.IsFavorite(id))
	assert.Empty(t, m.list.Items())
}

func TestCopyFeedbackLaterCopySupersedes(t *testing.T) {
	m, _ := newTestModel(t)
	id := itemIDs(m)[0]

	m = press(m, "c", "c")
	require.Equal(t, 2, m.copySeq)

	m = send(m, copyResultMsg{id: id, seq: 1})
	assert.Empty(t, m.copiedID, "stale copy result is ignored")

	m = send(m, copyResultMsg{id: id, seq: 2})
	assert.Equal(t, id, m.copiedID)
	assert.Contains(t, m.View(), "Copied")

	m = press(m, "c")
	m = send(m, copyFeedbackExpiredMsg{seq: 2})
	assert.Equal(t, id, m.copiedID, "expiry of a superseded copy keeps the feedback")

	m = send(m, copyResultMsg{id: id, seq: 3})
	m = send(m, copyFeedbackExpiredMsg{seq: 3})
	assert.Empty(t, m.copiedID)
}

func TestThemeToggle(t *testing.T) {
	m, svc := newTestModel(t)
	dark := svc.Dark()

	m = press(m, "t")
	assert.Equal(t, !dark, svc.Dark())
	if svc.Dark() {
		assert.Equal(t, DarkPalette, m.styles.Palette)
	} else {
		assert.Equal(t, LightPalette, m.styles.Palette)
	}
}

func TestAddCustomPromptThroughForm(t *testing.T) {
	m, svc := newTestModel(t)

	m = press(m, "n")
	require.Equal(t, ViewAddCustom, m.viewMode)

	m = press(m, "ctrl+s")
	assert.Equal(t, ViewAddCustom, m.viewMode, "blank text is rejected")
	assert.Equal(t, "error", m.statusKind)

	m = press(m, "Hello there", "ctrl+s")
	assert.Equal(t, ViewCustom, m.viewMode)

	custom := svc.CustomPrompts()
	require.Len(t, custom, 1)
	assert.Equal(t, "Hello there", custom[0].Text)
	assert.Equal(t, "Custom", custom[0].Tab)
	assert.Equal(t, "My Ideas", custom[0].Section)
	assert.Equal(t, "General", custom[0].Category)
	assert.Len(t, m.list.Items(), 1)
}

func TestCancelForm(t *testing.T) {
	m, svc := newTestModel(t)

	m = press(m, "n", "draft", "esc")
	assert.Equal(t, ViewBrowse, m.viewMode)
	assert.Empty(t, svc.CustomPrompts())
}

func TestDeleteCustomNeedsConfirmation(t *testing.T) {
	m, svc := newTestModel(t)
	_, err := svc.AddCustom(models.CustomInput{Text: "Mine"})
	require.NoError(t, err)

	m = press(m, "3")
	require.Len(t, m.list.Items(), 1)

	m = press(m, "d", "n")
	assert.Len(t, svc.CustomPrompts(), 1)

	m = press(m, "d", "y")
	assert.Empty(t, svc.CustomPrompts())
	assert.Empty(t, m.list.Items())
}

func TestDeleteIgnoresCatalogPrompts(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "d")
	assert.False(t, m.confirmDelete)
}

func TestPreviewAndBack(t *testing.T) {
	m, _ := newTestModel(t)
	id := itemIDs(m)[0]

	m = press(m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, id, m.selected.ID)
	assert.Contains(t, m.View(), "Work › Email › Cold Outreach")

	m = press(m, "esc")
	assert.Equal(t, ViewBrowse, m.viewMode)
}

func TestCatalogLoadFailureShowsWarning(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(m, catalogLoadedMsg{err: assert.AnError})
	assert.Equal(t, "warning", m.statusKind)
	assert.Len(t, m.list.Items(), 2, "cached records stay visible")
}

func TestStatusExpiry(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "f")
	seq := m.statusSeq
	require.NotEmpty(t, m.statusMsg)

	m = send(m, statusExpiredMsg{seq: seq - 1})
	assert.NotEmpty(t, m.statusMsg)

	m = send(m, statusExpiredMsg{seq: seq})
	assert.Empty(t, m.statusMsg)
}

func TestImportDoneReportsCounts(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(m, importDoneMsg{
		path: "custom-prompts.json",
		res:  transfer.Result{Added: make([]models.CustomPrompt, 2), Skipped: 1},
	})
	assert.Equal(t, ViewCustom, m.viewMode)
	assert.Equal(t, "success", m.statusKind)
	assert.Equal(t, "Imported 2, skipped 1", m.statusMsg)

	m = send(m, importDoneMsg{path: "notes.json", res: transfer.Result{Rejected: true}})
	assert.Equal(t, "warning", m.statusKind)
	assert.Equal(t, "notes.json is not a JSON array, nothing imported", m.statusMsg)
}
