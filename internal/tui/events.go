package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/util"
)

const (
	idColumnWidth   = 5
	dateColumnWidth = 12
)

// EventsPanel lists events joined with performer and venue names, with a
// user-selected sort and an optional filter.
type EventsPanel struct {
	store   core.Store
	table   table.Model
	filter  textinput.Model
	columns SortableColumns
	sort    core.EventSort
	rows    []core.EventRow
	// Results of older loads are dropped when a newer one was issued.
	loadSeq       int
	filterVisible bool
	focused       bool
	width         int
}

func NewEventsPanel(store core.Store) EventsPanel {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.Placeholder = "performer, venue or date"
	ti.Cursor.SetMode(cursor.CursorStatic)

	p := EventsPanel{
		store:   store,
		filter:  ti,
		columns: NewSortableColumns(core.SortPerformer, core.SortVenue, core.SortDate),
		sort:    core.DefaultEventSort(),
		table:   table.New(table.WithHeight(8)),
	}
	p.columns.Set(p.sort)
	p.SetSize(80, 10)
	return p
}

// Query returns the sort and filter the next load will use.
func (p EventsPanel) Query() core.EventQuery {
	return core.EventQuery{Sort: p.sort, Filter: p.filter.Value()}
}

// Load reads the rows for the current query.
func (p *EventsPanel) Load() tea.Cmd {
	p.loadSeq++
	seq, q, store := p.loadSeq, p.Query(), p.store
	return func() tea.Msg {
		rows, err := store.ListEvents(context.Background(), q)
		return eventsLoadedMsg{seq: seq, rows: rows, err: err}
	}
}

// apply replaces the displayed rows. It reports false for stale results.
func (p *EventsPanel) apply(msg eventsLoadedMsg) bool {
	if msg.seq != p.loadSeq {
		return false
	}
	if msg.err != nil {
		return true
	}
	p.rows = msg.rows
	p.refreshTable()
	return true
}

// Resort toggles the direction of the sortable column at idx and reloads.
func (p *EventsPanel) Resort(idx int) tea.Cmd {
	if idx < 0 || idx >= p.columns.Len() {
		return nil
	}
	p.sort = p.columns.Toggle(idx)
	p.refreshColumns()
	return p.Load()
}

// ToggleFilter shows the filter input and focuses it. A kept filter is
// focused again for editing; a focused one is hidden, cleared and reloaded.
func (p *EventsPanel) ToggleFilter() tea.Cmd {
	if !p.filterVisible {
		p.filterVisible = true
		return p.filter.Focus()
	}
	if !p.filter.Focused() {
		return p.filter.Focus()
	}
	return p.closeFilter()
}

func (p *EventsPanel) closeFilter() tea.Cmd {
	p.filterVisible = false
	p.filter.Blur()
	if p.filter.Value() == "" {
		return nil
	}
	p.filter.SetValue("")
	return p.Load()
}

// Capturing reports whether key presses belong to the filter input.
func (p EventsPanel) Capturing() bool {
	return p.filterVisible && p.filter.Focused()
}

// FilterVisible reports whether the filter row is shown.
func (p EventsPanel) FilterVisible() bool { return p.filterVisible }

func (p *EventsPanel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, defaultFilterKeys.Close):
		return p.closeFilter()
	case key.Matches(msg, defaultFilterKeys.Apply):
		p.filter.Blur()
		return nil
	}
	before := p.filter.Value()
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	if p.filter.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, p.Load())
}

// Selected returns the row under the cursor.
func (p EventsPanel) Selected() (core.EventRow, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.rows) {
		return core.EventRow{}, false
	}
	return p.rows[i], true
}

// Rows returns the displayed rows.
func (p EventsPanel) Rows() []core.EventRow { return p.rows }

func (p *EventsPanel) SetFocused(focused bool) {
	p.focused = focused
	if focused {
		p.table.Focus()
	} else {
		p.table.Blur()
	}
	p.table.SetStyles(tableStyles(focused))
}

func (p *EventsPanel) SetSize(width, height int) {
	p.width = width
	tableHeight := height - 2 // title and filter row
	if tableHeight < 3 {
		tableHeight = 3
	}
	p.table.SetWidth(width)
	p.table.SetHeight(tableHeight)
	p.refreshColumns()
	p.refreshTable()
}

func (p EventsPanel) nameWidth() int {
	w := (p.width - idColumnWidth - dateColumnWidth - 8) / 2
	if w < 10 {
		w = 10
	}
	return w
}

func (p *EventsPanel) refreshColumns() {
	titles := p.columns.Titles()
	nw := p.nameWidth()
	p.table.SetColumns([]table.Column{
		{Title: "ID", Width: idColumnWidth},
		{Title: titles[0], Width: nw},
		{Title: titles[1], Width: nw},
		{Title: titles[2], Width: dateColumnWidth},
	})
}

func (p *EventsPanel) refreshTable() {
	nw := p.nameWidth()
	rows := make([]table.Row, len(p.rows))
	for i, r := range p.rows {
		rows[i] = table.Row{
			strconv.FormatInt(r.EventID, 10),
			util.TruncateText(r.PerformerName, nw),
			util.TruncateText(r.VenueName, nw),
			r.DateOrPlaceholder(),
		}
	}
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) {
		p.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (p *EventsPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p EventsPanel) View() string {
	title := PanelTitleStyle.Render("Events")
	if p.sort.Direction != core.Unsorted {
		title += lipgloss.NewStyle().Foreground(mutedColor).Render(" by " + p.sort.Column.String())
	}
	parts := []string{title}
	if p.filterVisible {
		parts = append(parts, FilterStyle.Render(p.filter.View()))
	}
	parts = append(parts, p.table.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
