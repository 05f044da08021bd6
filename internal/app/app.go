package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/mercari-build-training/simple-mercari/tui/internal/backend"
	"github.com/mercari-build-training/simple-mercari/tui/internal/ui"
	"github.com/mercari-build-training/simple-mercari/tui/internal/views/itemlist"
	"github.com/mercari-build-training/simple-mercari/tui/internal/views/listing"
)

const (
	AppName    = "simple-mercari"
	AppVersion = "0.1.0"

	// Title is the page header text.
	Title = "Simple Mercari"

	healthPollInterval = 10 * time.Second
)

// API is everything the root model needs from the server.
type API interface {
	listing.Submitter
	itemlist.Fetcher
	Hello(ctx context.Context) (string, error)
}

// Run starts the TUI application.
func Run(cfg backend.Config) error {
	ui.Apply(ui.LoadTheme(cfg.Theme.ColorsFile))

	// Deadlines come from the per-call context, so the transport has none.
	client := backend.NewClient(cfg.API.URL, 0)
	m := newModel(client, cfg.API.Timeout)
	p := tea.NewProgram(m)

	if cfg.Watch.ItemsFile != "" {
		w, err := backend.NewWatcher(cfg.Watch.ItemsFile, p)
		if err != nil {
			slog.Warn("watch items file", "path", cfg.Watch.ItemsFile, "error", err)
		} else {
			defer w.Close()
		}
	}

	slog.Info("starting", "api", client.BaseURL(), "version", AppVersion)
	_, err := p.Run()
	return err
}

// focusArea identifies which widget receives keys.
type focusArea int

const (
	focusListing focusArea = iota
	focusItems
)

// model is the root application model. It owns the reload flag shared by
// the listing form and the item list.
type model struct {
	width    int
	height   int
	ready    bool
	keys     KeyMap
	help     help.Model
	api      API
	timeout  time.Duration
	focus    focusArea
	apiState APIStatusMsg
	probed   bool

	// reload is true from a completed listing until the item list reports
	// that it has finished loading. It starts true to force the first load.
	reload bool

	listing  listing.Model
	itemList itemlist.Model

	// cursorCmd starts the focused form field's cursor blink.
	cursorCmd tea.Cmd
}

func newModel(api API, timeout time.Duration) model {
	m := model{
		keys:    DefaultKeyMap(),
		help:    help.New(),
		api:     api,
		timeout: timeout,
		focus:   focusListing,
		reload:  true,
	}
	m.listing = listing.New(api, timeout)
	m.itemList = itemlist.New(api, m.reload, timeout)
	m.cursorCmd = m.listing.Focus()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.itemList.Init(),
		m.probeAPI,
		m.tickHealth(),
		m.cursorCmd,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutViews()
		return m, nil

	case listing.CompletedMsg:
		m.reload = true
		return m, m.syncReload()

	case itemlist.LoadCompletedMsg:
		m.reload = false
		m.listing.SetCategories(backend.Categories(m.itemList.Items()))
		return m, m.syncReload()

	case backend.WatchMsg:
		slog.Debug("reload requested by watcher", "path", msg.Path)
		m.reload = true
		return m, m.syncReload()

	case listing.SubmittedMsg:
		var cmd tea.Cmd
		m.listing, cmd = m.listing.Update(msg)
		return m, cmd

	case itemlist.ItemsLoadedMsg, itemlist.DetailLoadedMsg:
		var cmd tea.Cmd
		m.itemList, cmd = m.itemList.Update(msg)
		return m, cmd

	case APIStatusMsg:
		if msg.Err != nil && (!m.probed || m.apiState.Err == nil) {
			slog.Warn("api unreachable", "error", msg.Err)
		}
		m.apiState = msg
		m.probed = true
		return m, nil

	case HealthTickMsg:
		return m, tea.Batch(m.probeAPI, m.tickHealth())

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// syncReload hands the current reload flag to the item list.
func (m *model) syncReload() tea.Cmd {
	return m.itemList.SetReload(m.reload)
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// While the search input is open every key except ctrl+c belongs to it.
	typing := m.focus == focusListing || m.itemList.Searching()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.QuitList) && !typing:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Switch) && !m.itemList.Searching():
		return m, m.switchFocus()

	case key.Matches(msg, m.keys.Refresh):
		m.reload = true
		return m, m.syncReload()

	case key.Matches(msg, m.keys.Help) && !typing:
		m.help.ShowAll = !m.help.ShowAll
		m.layoutViews()
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *model) switchFocus() tea.Cmd {
	if m.focus == focusListing {
		m.focus = focusItems
		m.listing.Blur()
		m.itemList.Focus()
		return nil
	}
	m.focus = focusListing
	m.itemList.Blur()
	return m.listing.Focus()
}

func (m model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusListing:
		m.listing, cmd = m.listing.Update(msg)
	case focusItems:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if !m.ready {
		v.SetContent("Loading...")
		return v
	}
	v.SetContent(m.render())
	return v
}

// render lays out header, listing form, item list and footer.
func (m *model) render() string {
	panelW := max(m.width-2, 20)
	form := ui.Panel(m.focus == focusListing).
		Width(panelW).
		Render(ui.StyleAccent.Render("New listing") + "\n" + m.listing.View())
	list := ui.Panel(m.focus == focusItems).
		Width(panelW).
		Render(m.itemList.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		form,
		list,
		m.renderFooter(),
	)
}

func (m *model) renderHeader() string {
	title := ui.StyleHeader.Render(" " + Title + " ")
	bar := strings.Repeat("━", max(m.width, 0))
	return title + "\n" + ui.StyleDim.Render(bar)
}

func (m *model) renderFooter() string {
	var api string
	switch {
	case !m.probed:
		api = ui.StyleDim.Render("api: …")
	case m.apiState.Err != nil:
		api = ui.StyleDim.Render("api: ") + ui.StyleError.Render("down")
	default:
		api = ui.StyleDim.Render("api: ") + ui.StyleActive.Render("up")
	}
	return api + ui.StyleDim.Render("  │  ") + m.help.View(m.keys)
}

// Fixed rows: header(2) + form panel(1 title + 4 form + 2 border) + list border(2) + footer.
func (m *model) layoutViews() {
	footer := 1
	if m.help.ShowAll {
		footer = 3
	}
	m.listing.SetSize(m.width - 6)

	listHeight := m.height - 2 - 7 - 2 - footer
	if listHeight < 5 {
		listHeight = 5
	}
	m.itemList.SetSize(m.width-4, listHeight)
}

// --- Commands ---

func (m model) probeAPI() tea.Msg {
	ctx, cancel := backend.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	msg, err := m.api.Hello(ctx)
	return APIStatusMsg{Message: msg, Err: err}
}

func (m model) tickHealth() tea.Cmd {
	return tea.Tick(healthPollInterval, func(time.Time) tea.Msg {
		return HealthTickMsg{}
	})
}
