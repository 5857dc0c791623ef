package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/clipboard"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/renderer"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/transfer"
)

// reloadTimeout bounds a catalog reload started from the UI
const reloadTimeout = 30 * time.Second

// statusDuration is how long status messages stay visible
const statusDuration = 3 * time.Second

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewBrowse ViewMode = iota
	ViewFavorites
	ViewCustom
	ViewDetail
	ViewAddCustom
	ViewImport
)

var viewNames = []string{"Browse", "Favorites", "Custom"}

// Messages for async operations
type catalogLoadedMsg struct {
	err error
}

type copyResultMsg struct {
	id  string
	seq int
	err error
}

type copyFeedbackExpiredMsg struct {
	seq int
}

type statusExpiredMsg struct {
	seq int
}

type importDoneMsg struct {
	path string
	res  transfer.Result
	err  error
}

// promptItem is a catalog or custom prompt in a list
type promptItem struct {
	prompt   models.FlatPrompt
	location string
	favorite bool
	copied   bool
	custom   bool
}

func (i promptItem) Title() string {
	title := i.prompt.Title()
	switch {
	case i.copied:
		return "✓ " + title
	case i.favorite:
		return "★ " + title
	}
	return title
}

func (i promptItem) Description() string { return i.location }

func (i promptItem) FilterValue() string { return i.prompt.FilterValue() }

// KeyMap defines all key bindings
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Browse    key.Binding
	Favorites key.Binding
	Custom    key.Binding
	Enter     key.Binding
	Back      key.Binding
	Search    key.Binding
	Favorite  key.Binding
	Copy      key.Binding
	CopyJSON  key.Binding
	New       key.Binding
	Delete    key.Binding
	Export    key.Binding
	Import    key.Binding
	Theme     key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Copy, k.Favorite, k.NextTab, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Browse, k.Favorites, k.Custom, k.Enter, k.Back},
		{k.Search, k.Copy, k.CopyJSON, k.Favorite},
		{k.New, k.Delete, k.Export, k.Import},
		{k.Theme, k.Reload, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("Shift+Tab", "previous tab"),
	),
	Browse: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "browse"),
	),
	Favorites: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "favorites"),
	),
	Custom: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "custom"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "preview"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Favorite: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "favorite"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	CopyJSON: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy as JSON"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new prompt"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete custom"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export custom"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import custom"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "toggle theme"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload catalog"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model represents the TUI application state
type Model struct {
	service *service.Service
	logger  *zap.Logger

	viewMode ViewMode
	listMode ViewMode // list view to return to from the preview

	// UI components
	list        list.Model
	viewport    viewport.Model
	help        help.Model
	keys        KeyMap
	search      textinput.Model
	importInput textinput.Model
	form        *CustomForm

	styles  Styles
	glamour *glamour.TermRenderer

	// Browse state
	tabs      []string
	activeTab int
	searching bool
	selected  models.FlatPrompt

	confirmDelete bool

	// Window dimensions
	width  int
	height int

	// Status messages
	statusMsg  string
	statusKind string
	statusSeq  int

	// Copy feedback; a later copy supersedes an earlier one
	copiedID string
	copySeq  int
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service, logger *zap.Logger) Model {
	styles := NewStyles(svc.Dark())

	l := list.New(nil, styles.Delegate(), 80, 20) // resized on the first WindowSizeMsg
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search prompts, categories, sections and tabs"
	search.CharLimit = 200

	importInput := textinput.New()
	importInput.Prompt = "File: "
	importInput.SetValue(transfer.DefaultExportFile)
	importInput.CharLimit = 500

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	m := Model{
		service:     svc,
		logger:      logging.OrNop(logger),
		viewMode:    ViewBrowse,
		listMode:    ViewBrowse,
		list:        l,
		viewport:    vp,
		help:        help.New(),
		keys:        keys,
		search:      search,
		importInput: importInput,
		styles:      styles,
	}
	m.glamour, _ = renderer.NewTerminal(60, svc.Dark())
	m.refreshTabs()
	m.refreshItems()
	return m
}

// Init loads the catalog when none is cached yet
func (m Model) Init() tea.Cmd {
	return loadCatalogCmd(m.service, false)
}

func loadCatalogCmd(svc *service.Service, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		return catalogLoadedMsg{err: svc.LoadCatalog(ctx, force)}
	}
}

func copyCmd(content, id string, seq int) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{id: id, seq: seq, err: clipboard.Copy(content)}
	}
}

func importCmd(svc *service.Service, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.ImportCustomFile(path)
		return importDoneMsg{path: path, res: res, err: err}
	}
}

// setStatus shows text until statusDuration passes or another status
// replaces it
func (m *Model) setStatus(text, kind string) tea.Cmd {
	m.statusSeq++
	m.statusMsg = text
	m.statusKind = kind
	seq := m.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case catalogLoadedMsg:
		m.refreshTabs()
		m.refreshItems()
		if msg.err != nil {
			m.logger.Warn("catalog load failed", zap.Error(msg.err))
			cmd := m.setStatus(fmt.Sprintf("Catalog unavailable: %v", msg.err), "warning")
			return m, cmd
		}
		return m, nil

	case copyResultMsg:
		if msg.seq != m.copySeq {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("copy failed", zap.String("id", msg.id), zap.Error(msg.err))
			cmd := m.setStatus(msg.err.Error(), "error")
			return m, cmd
		}
		m.copiedID = msg.id
		m.refreshItems()
		seq := msg.seq
		return m, tea.Tick(clipboard.FeedbackDuration, func(time.Time) tea.Msg {
			return copyFeedbackExpiredMsg{seq: seq}
		})

	case copyFeedbackExpiredMsg:
		if msg.seq == m.copySeq {
			m.copiedID = ""
			m.refreshItems()
		}
		return m, nil

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case importDoneMsg:
		m.viewMode = ViewCustom
		m.listMode = ViewCustom
		m.refreshItems()
		switch {
		case msg.err != nil:
			cmd := m.setStatus(fmt.Sprintf("Import failed: %v", msg.err), "error")
			return m, cmd
		case msg.res.Rejected:
			cmd := m.setStatus(msg.path+" is not a JSON array, nothing imported", "warning")
			return m, cmd
		default:
			cmd := m.setStatus(fmt.Sprintf("Imported %d, skipped %d", len(msg.res.Added), msg.res.Skipped), "success")
			return m, cmd
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.updateComponents(msg)
}

// updateComponents forwards non-key messages such as cursor blinks
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewAddCustom:
		if m.form != nil {
			cmd = m.form.Update(msg)
		}
	case ViewImport:
		m.importInput, cmd = m.importInput.Update(msg)
	case ViewDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		if m.searching {
			m.search, cmd = m.search.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewAddCustom:
		return m.handleFormKey(msg)
	case ViewImport:
		return m.handleImportKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() != "y" {
			cmd := m.setStatus("Delete cancelled", "info")
			return m, cmd
		}
		return m.deleteSelected()
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refreshItems()
		}
		return m, nil
	case key.Matches(msg, m.keys.Browse):
		return m.switchView(ViewBrowse), nil
	case key.Matches(msg, m.keys.Favorites):
		return m.switchView(ViewFavorites), nil
	case key.Matches(msg, m.keys.Custom):
		return m.switchView(ViewCustom), nil
	case key.Matches(msg, m.keys.NextTab):
		return m.moveTab(1), nil
	case key.Matches(msg, m.keys.PrevTab):
		return m.moveTab(-1), nil
	case key.Matches(msg, m.keys.Search):
		m = m.switchView(ViewBrowse)
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.selectedItem(); ok {
			m.selected = item.prompt
			m.listMode = m.viewMode
			m.viewMode = ViewDetail
			m.renderPreview()
		}
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		if item, ok := m.selectedItem(); ok {
			return m.toggleFavorite(item.prompt.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.selectedItem(); ok {
			return m.copyPrompt(item.prompt, false)
		}
		return m, nil
	case key.Matches(msg, m.keys.CopyJSON):
		if item, ok := m.selectedItem(); ok {
			return m.copyPrompt(item.prompt, true)
		}
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.form = NewCustomForm(m.service.FormDefaults())
		m.form.Resize(m.width, m.height)
		m.viewMode = ViewAddCustom
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selectedItem(); ok && item.custom {
			m.confirmDelete = true
			cmd := m.setStatus("Delete this custom prompt? y to confirm", "warning")
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.Export):
		path, err := m.service.ExportCustomFile(transfer.DefaultExportFile)
		if err != nil {
			cmd := m.setStatus(fmt.Sprintf("Export failed: %v", err), "error")
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("Exported %d custom prompts to %s", len(m.service.CustomPrompts()), path), "success")
		return m, cmd
	case key.Matches(msg, m.keys.Import):
		m.viewMode = ViewImport
		cmd := m.importInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Theme):
		m.service.ToggleDark()
		m.applyTheme()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		cmd := m.setStatus("Reloading catalog...", "info")
		return m, tea.Batch(cmd, loadCatalogCmd(m.service, true))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refreshItems()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refreshItems()
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "backspace":
		m.viewMode = m.listMode
		m.refreshItems()
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Favorite):
		mm, cmd := m.toggleFavorite(m.selected.ID)
		model := mm.(Model)
		model.renderPreview()
		return model, cmd
	case key.Matches(msg, m.keys.Copy):
		return m.copyPrompt(m.selected, false)
	case key.Matches(msg, m.keys.CopyJSON):
		return m.copyPrompt(m.selected, true)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.form.Update(msg)

	if m.form.IsCancelled() {
		m.form = nil
		m.viewMode = m.listMode
		return m, nil
	}
	if !m.form.IsSubmitted() {
		return m, cmd
	}

	created, err := m.service.AddCustom(m.form.ToInput())
	if err != nil {
		m.form.Resume()
		cmd = m.setStatus(err.Error(), "error")
		return m, cmd
	}
	m.form = nil
	m = m.switchView(ViewCustom)
	cmd = m.setStatus("Added "+created.ID, "success")
	return m, cmd
}

func (m Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.importInput.Blur()
		m.viewMode = m.listMode
		return m, nil
	case "enter":
		m.importInput.Blur()
		path := m.importInput.Value()
		return m, importCmd(m.service, path)
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

func (m Model) switchView(mode ViewMode) Model {
	m.viewMode = mode
	m.listMode = mode
	m.confirmDelete = false
	m.list.Select(0)
	m.refreshItems()
	return m
}

func (m Model) moveTab(delta int) Model {
	if m.viewMode != ViewBrowse || len(m.tabs) == 0 {
		return m
	}
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.list.Select(0)
	m.refreshItems()
	return m
}

func (m Model) toggleFavorite(id string) (tea.Model, tea.Cmd) {
	if m.service.ToggleFavorite(id) {
		m.refreshItems()
		cmd := m.setStatus("★ Added to favorites", "success")
		return m, cmd
	}
	m.refreshItems()
	cmd := m.setStatus("Removed from favorites", "info")
	return m, cmd
}

func (m Model) copyPrompt(p models.FlatPrompt, asJSON bool) (tea.Model, tea.Cmd) {
	r := renderer.NewRenderer(p, nil)
	content := r.RenderText()
	if asJSON {
		var err error
		if content, err = r.RenderJSON(); err != nil {
			cmd := m.setStatus(err.Error(), "error")
			return m, cmd
		}
	}
	m.copySeq++
	return m, copyCmd(content, p.ID, m.copySeq)
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok || !item.custom {
		return m, nil
	}
	if err := m.service.RemoveCustom(item.prompt.ID); err != nil {
		cmd := m.setStatus(err.Error(), "error")
		return m, cmd
	}
	m.refreshItems()
	cmd := m.setStatus("Custom prompt deleted", "success")
	return m, cmd
}

func (m Model) selectedItem() (promptItem, bool) {
	item, ok := m.list.SelectedItem().(promptItem)
	return item, ok
}

func (m *Model) refreshTabs() {
	m.tabs = m.service.Tabs()
	if m.activeTab >= len(m.tabs) {
		m.activeTab = 0
	}
}

// visiblePrompts returns the records of the current list view
func (m *Model) visiblePrompts() ([]models.FlatPrompt, bool) {
	switch m.listMode {
	case ViewFavorites:
		var out []models.FlatPrompt
		for _, section := range m.service.FavoriteGroups() {
			for _, category := range section.Categories {
				out = append(out, category.Prompts...)
			}
		}
		return out, false
	case ViewCustom:
		custom := m.service.CustomPrompts()
		out := make([]models.FlatPrompt, len(custom))
		for i, c := range custom {
			out[i] = models.FlatPrompt{ID: c.ID, Text: c.Text, Tab: c.Tab, Section: c.Section, Category: c.Category}
		}
		return out, true
	default:
		if query := m.search.Value(); catalog.IsSearching(query) {
			return m.service.SearchPrompts(query), false
		}
		if len(m.tabs) == 0 {
			return nil, false
		}
		return m.service.PromptsInTab(m.tabs[m.activeTab]), false
	}
}

func (m *Model) refreshItems() {
	prompts, custom := m.visiblePrompts()
	items := make([]list.Item, len(prompts))
	for i, p := range prompts {
		items[i] = promptItem{
			prompt:   p,
			location: m.location(p),
			favorite: !custom && m.service.IsFavorite(p.ID),
			copied:   p.ID == m.copiedID,
			custom:   custom,
		}
	}
	index := m.list.Index()
	m.list.SetItems(items)
	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		m.list.Select(index)
	}
}

func (m *Model) location(p models.FlatPrompt) string {
	f := m.service.FormatLabel
	return models.Breadcrumb(f(p.Tab), f(p.Section), f(p.Category))
}

func (m *Model) applyTheme() {
	dark := m.service.Dark()
	m.styles = NewStyles(dark)
	m.list.SetDelegate(m.styles.Delegate())
	if r, err := renderer.NewTerminal(m.previewWidth(), dark); err == nil {
		m.glamour = r
	}
	if m.viewMode == ViewDetail {
		m.renderPreview()
	}
}

func (m *Model) previewWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// header, tab bar, search line, status and help
	reserved := 7
	if m.help.ShowAll {
		reserved += 5
	}
	available := height - reserved
	if available < 5 {
		available = 5
	}

	m.list.SetSize(width-2, available)
	m.viewport.Width = m.previewWidth()
	m.viewport.Height = available
	m.help.Width = width

	if r, err := renderer.NewTerminal(m.previewWidth(), m.service.Dark()); err == nil {
		m.glamour = r
	}
	if m.form != nil {
		m.form.Resize(width, height)
	}
	if m.viewMode == ViewDetail {
		m.renderPreview()
	}
}

// renderPreview renders the selected prompt into the viewport
func (m *Model) renderPreview() {
	r := renderer.NewRenderer(m.selected, m.service.FormatLabel).
		WithFavorite(m.service.IsFavorite(m.selected.ID))

	content := r.RenderMarkdown()
	if m.glamour != nil {
		if out, err := r.RenderTerminal(m.glamour); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// View renders the current view
func (m Model) View() string {
	var sections []string

	active := int(m.listMode)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Title.Render("Prompt Vault"),
		m.styles.TabBar(viewNames, active),
	))

	switch m.viewMode {
	case ViewAddCustom:
		if m.form != nil {
			sections = append(sections, m.form.View(m.styles))
		}
	case ViewImport:
		dialog := m.styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Subtitle.Render("Import custom prompts"),
			m.importInput.View(),
			"",
			m.styles.TextDim.Render("Enter import • Esc cancel")))
		sections = append(sections, CenterModal(dialog, m.width-4, m.viewport.Height))
	case ViewDetail:
		top, bottom := m.styles.ScrollIndicators(!m.viewport.AtTop(), !m.viewport.AtBottom())
		sections = append(sections,
			m.styles.Metadata.Render(m.location(m.selected)),
			top, m.styles.Content.Render(m.viewport.View()), bottom)
	default:
		sections = append(sections, m.listHeader())
		if len(m.list.Items()) == 0 {
			sections = append(sections, m.styles.TextMuted.Render(m.emptyText()))
		} else {
			sections = append(sections, m.list.View())
		}
	}

	sections = append(sections, m.statusLine(), m.help.View(m.keys))
	return AddMainPadding(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) listHeader() string {
	switch m.listMode {
	case ViewFavorites:
		return m.styles.Subtitle.Render(fmt.Sprintf("%d favorites", len(m.list.Items())))
	case ViewCustom:
		return m.styles.Subtitle.Render(fmt.Sprintf("%d custom prompts", len(m.list.Items())))
	}

	tabNames := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		tabNames[i] = m.service.FormatLabel(t)
	}
	header := m.styles.TabBar(tabNames, m.activeTab)
	if m.searching || m.search.Value() != "" {
		count := m.styles.TextMuted.Render(fmt.Sprintf("(%d results)", len(m.list.Items())))
		header = lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Search.Render(m.search.View()), count))
	}
	return header
}

func (m Model) emptyText() string {
	switch m.listMode {
	case ViewFavorites:
		return "No favorites yet. Press f on a prompt to add it."
	case ViewCustom:
		return "No custom prompts yet. Press n to write one or i to import."
	}
	if m.search.Value() != "" {
		return "No prompts match your search."
	}
	return "No prompts loaded. Press r to reload the catalog."
}

func (m Model) statusLine() string {
	if m.copiedID != "" {
		return m.styles.Status("✓ Copied", "success")
	}
	if m.statusMsg == "" {
		return ""
	}
	return m.styles.Status(m.statusMsg, m.statusKind)
}
