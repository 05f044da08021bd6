package itemlist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	"charm.land/lipgloss/v2"

	"github.com/mercari-build-training/simple-mercari/tui/internal/backend"
	"github.com/mercari-build-training/simple-mercari/tui/internal/ui"
)

const (
	previewWidthFrac = 0.4
	minPreviewWidth  = 28

	categoryWidth = 14
	imageWidth    = 18
)

// Fetcher is the part of the API the item list reads from.
type Fetcher interface {
	ListItems(ctx context.Context) ([]backend.Item, error)
	SearchItems(ctx context.Context, keyword string) ([]backend.Item, error)
	GetItem(ctx context.Context, id int) (backend.ItemDetail, error)
	ImageURL(imageName string) string
}

// Model is the item list view: a table of items with a detail preview.
type Model struct {
	fetcher Fetcher
	timeout time.Duration

	table   table.Model
	preview viewport.Model
	search  textinput.Model
	items   []backend.Item
	width   int
	height  int
	focused bool

	reload    bool // last reload value received from the parent
	loading   bool
	seq       int
	keyword   string
	searching bool
	err       error
}

// New creates the item list. When reload is true the first fetch is issued by Init.
func New(fetcher Fetcher, reload bool, timeout time.Duration) Model {
	cols := []table.Column{
		{Title: "id", Width: 4},
		{Title: "name", Width: 24},
		{Title: "category", Width: categoryWidth},
		{Title: "image", Width: imageWidth},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	si := textinput.New()
	si.Prompt = "search: "
	si.Placeholder = "keyword"
	si.CharLimit = 64

	m := Model{
		fetcher: fetcher,
		timeout: timeout,
		table:   t,
		preview: viewport.New(viewport.WithWidth(40), viewport.WithHeight(10)),
		search:  si,
		reload:  reload,
	}
	if reload {
		m.loading = true
		m.seq = 1
	}
	return m
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder)
	s.Cell = s.Cell.Foreground(ui.ColorWhite)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ui.T.BrightWhite)).
		Background(ui.ColorAccent).
		Bold(true)
	return s
}

// Init issues the mount-time fetch when the list was created with reload set.
func (m Model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return m.fetchCmd(m.seq, m.keyword)
}

// SetReload passes the parent's reload flag. A fetch starts only when the
// value turns from false to true; repeating a value does nothing.
func (m *Model) SetReload(reload bool) tea.Cmd {
	prev := m.reload
	m.reload = reload
	if reload && !prev {
		return m.fetch()
	}
	return nil
}

// Reload returns the last reload value received.
func (m *Model) Reload() bool { return m.reload }

// Loading reports whether a fetch is in flight.
func (m *Model) Loading() bool { return m.loading }

// Items returns the items currently shown.
func (m *Model) Items() []backend.Item { return m.items }

// Keyword returns the active search keyword.
func (m *Model) Keyword() string { return m.keyword }

// Err returns the error of the last fetch, if any.
func (m *Model) Err() error { return m.err }

// Searching reports whether the search input has focus.
func (m *Model) Searching() bool { return m.searching }

// SetItems replaces the table contents.
func (m *Model) SetItems(items []backend.Item) {
	m.items = items
	m.refreshRows()
	if m.table.Cursor() >= len(items) {
		m.table.SetCursor(max(len(items)-1, 0))
	}
	m.setPreview(m.SelectedItem(), nil, nil)
}

// refreshRows rebuilds the table rows, cutting text to the column widths.
func (m *Model) refreshRows() {
	rows := make([]table.Row, len(m.items))
	for i, it := range m.items {
		id := "-"
		if it.ID > 0 {
			id = strconv.Itoa(it.ID)
		}
		rows[i] = table.Row{
			id,
			ui.Truncate(it.Name, m.nameWidth()),
			ui.Truncate(it.Category, categoryWidth),
			ui.Truncate(it.ImageName, imageWidth),
		}
	}
	m.table.SetRows(rows)
}

// SelectedItem returns the item under the cursor, if any.
func (m *Model) SelectedItem() *backend.Item {
	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.items) {
		return &m.items[idx]
	}
	return nil
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	previewW := m.previewWidth()
	tableW := w - previewW - 3
	if tableW < 20 {
		tableW = 20
	}
	tableH := h - 1 // status line
	if m.searching || m.keyword != "" {
		tableH--
	}
	if tableH < 3 {
		tableH = 3
	}

	m.table.SetWidth(tableW)
	m.table.SetHeight(tableH)
	m.preview.SetWidth(previewW)
	m.preview.SetHeight(tableH)
	m.search.SetWidth(tableW - 10)

	fixedW := 4 + categoryWidth + imageWidth + 8
	nameW := tableW - fixedW
	if nameW < 10 {
		nameW = 10
	}
	cols := m.table.Columns()
	if len(cols) == 4 {
		cols[1].Width = nameW
		m.table.SetColumns(cols)
	}
	m.refreshRows()
}

func (m *Model) nameWidth() int {
	cols := m.table.Columns()
	if len(cols) < 2 {
		return 0
	}
	return cols[1].Width
}

// Focus gives keyboard focus to the table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.searching = false
	m.search.Blur()
	m.table.Blur()
}

// Focused reports whether the list has keyboard focus.
func (m *Model) Focused() bool { return m.focused }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		if msg.seq != m.seq {
			// Superseded by a newer fetch, which will report completion.
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			slog.Warn("load items", "keyword", msg.Keyword, "error", msg.Err)
			m.err = msg.Err
		} else {
			slog.Debug("items loaded", "keyword", msg.Keyword, "count", len(msg.Items))
			m.err = nil
			m.SetItems(msg.Items)
		}
		return m, tea.Batch(m.loadSelectedDetail(), loadCompleted)

	case DetailLoadedMsg:
		if sel := m.SelectedItem(); sel != nil && sel.ID == msg.ID {
			m.setPreview(sel, &msg.Detail, msg.Err)
		}
		return m, nil
	}

	if !m.focused {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		if m.searching {
			switch keyMsg.String() {
			case "enter":
				m.keyword = strings.TrimSpace(m.search.Value())
				m.stopSearch()
				return m, m.fetch()
			case "esc":
				m.search.SetValue(m.keyword)
				m.stopSearch()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch keyMsg.String() {
		case "/":
			m.searching = true
			m.table.Blur()
			m.SetSize(m.width, m.height)
			return m, m.search.Focus()
		case "esc":
			if m.keyword != "" {
				m.keyword = ""
				m.search.SetValue("")
				m.SetSize(m.width, m.height)
				return m, m.fetch()
			}
			return m, nil
		}
	}

	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.setPreview(m.SelectedItem(), nil, nil)
		return m, tea.Batch(cmd, m.loadSelectedDetail())
	}
	return m, cmd
}

// View renders the search line, table and preview.
func (m Model) View() string {
	var b strings.Builder

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteByte('\n')
	} else if m.keyword != "" {
		b.WriteString(ui.StyleDim.Render("search: ") + ui.StyleAccent.Render(m.keyword) +
			ui.StyleDim.Render("  (esc to clear)"))
		b.WriteByte('\n')
	}

	tableView := m.table.View()
	previewView := ui.StylePreviewBorder.
		Width(m.previewWidth()).
		Render(m.preview.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tableView, previewView))
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) statusLine() string {
	switch {
	case m.loading:
		return ui.StyleDim.Render("Loading items...")
	case m.err != nil:
		return ui.StyleError.Render("Failed to load items: " + m.err.Error())
	case len(m.items) == 0:
		return ui.StyleDim.Render("No items")
	default:
		return ui.StyleDim.Render(fmt.Sprintf("%d items", len(m.items)))
	}
}

func (m *Model) stopSearch() {
	m.searching = false
	m.search.Blur()
	if m.focused {
		m.table.Focus()
	}
	m.SetSize(m.width, m.height)
}

func (m *Model) previewWidth() int {
	pw := int(float64(m.width) * previewWidthFrac)
	if pw < minPreviewWidth {
		pw = minPreviewWidth
	}
	return pw
}

func (m *Model) fetch() tea.Cmd {
	m.seq++
	m.loading = true
	return m.fetchCmd(m.seq, m.keyword)
}

func (m Model) fetchCmd(seq int, keyword string) tea.Cmd {
	f, timeout := m.fetcher, m.timeout
	return func() tea.Msg {
		ctx, cancel := backend.WithTimeout(context.Background(), timeout)
		defer cancel()

		var items []backend.Item
		var err error
		if keyword == "" {
			items, err = f.ListItems(ctx)
		} else {
			items, err = f.SearchItems(ctx, keyword)
		}
		return ItemsLoadedMsg{Keyword: keyword, Items: items, Err: err, seq: seq}
	}
}

func (m *Model) loadSelectedDetail() tea.Cmd {
	sel := m.SelectedItem()
	if sel == nil || sel.ID <= 0 {
		return nil
	}
	id, f, timeout := sel.ID, m.fetcher, m.timeout
	return func() tea.Msg {
		ctx, cancel := backend.WithTimeout(context.Background(), timeout)
		defer cancel()
		d, err := f.GetItem(ctx, id)
		return DetailLoadedMsg{ID: id, Detail: d, Err: err}
	}
}

func (m *Model) setPreview(it *backend.Item, detail *backend.ItemDetail, err error) {
	if it == nil {
		m.preview.SetContent(ui.StyleDim.Render("No item selected"))
		return
	}

	name, category, image := it.Name, it.Category, it.ImageName
	if detail != nil && err == nil {
		name, category, image = detail.Name, detail.Category, detail.ImageName
	}

	var s string
	s += ui.StyleAccent.Render(name) + "\n\n"
	if it.ID > 0 {
		s += ui.StyleDim.Render("ID:       ") + strconv.Itoa(it.ID) + "\n"
	}
	s += ui.StyleDim.Render("Category: ") + category + "\n"
	s += ui.StyleDim.Render("Image:    ") + image + "\n"
	if url := m.fetcher.ImageURL(image); url != "" {
		s += ui.StyleDim.Render("URL:      ") + url + "\n"
	}
	if err != nil {
		s += "\n" + ui.StyleError.Render("Detail: "+err.Error()) + "\n"
	}
	m.preview.SetContent(s)
	m.preview.GotoTop()
}

func loadCompleted() tea.Msg { return LoadCompletedMsg{} }
