package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/util"
)

const countColumnWidth = 8

// recordRow is one line of the performers or venues table. Detail holds the
// genre or the location.
type recordRow struct {
	ID     int64
	Name   string
	Detail string
	Count  int
}

// RecordPanel lists performers or venues sorted by name.
type RecordPanel struct {
	kind    core.Kind
	title   string
	detail  string
	store   core.Store
	table   table.Model
	rows    []recordRow
	loadSeq int
	focused bool
	width   int
}

func NewPerformersPanel(store core.Store) RecordPanel {
	return newRecordPanel(store, core.KindPerformer, "Performers", "Genre")
}

func NewVenuesPanel(store core.Store) RecordPanel {
	return newRecordPanel(store, core.KindVenue, "Venues", "Location")
}

func newRecordPanel(store core.Store, kind core.Kind, title, detail string) RecordPanel {
	p := RecordPanel{
		kind:   kind,
		title:  title,
		detail: detail,
		store:  store,
		table:  table.New(table.WithHeight(6)),
	}
	p.SetSize(40, 8)
	return p
}

func (p *RecordPanel) Load() tea.Cmd {
	p.loadSeq++
	seq, kind, store := p.loadSeq, p.kind, p.store
	return func() tea.Msg {
		ctx := context.Background()
		var rows []recordRow
		switch kind {
		case core.KindPerformer:
			performers, err := store.ListPerformers(ctx)
			if err != nil {
				return recordsLoadedMsg{kind: kind, seq: seq, err: err}
			}
			for _, r := range performers {
				rows = append(rows, recordRow{ID: r.ID, Name: r.Name, Detail: r.Genre, Count: r.EventCount})
			}
		case core.KindVenue:
			venues, err := store.ListVenues(ctx)
			if err != nil {
				return recordsLoadedMsg{kind: kind, seq: seq, err: err}
			}
			for _, r := range venues {
				rows = append(rows, recordRow{ID: r.ID, Name: r.Name, Detail: r.Location, Count: r.EventCount})
			}
		}
		return recordsLoadedMsg{kind: kind, seq: seq, rows: rows}
	}
}

func (p *RecordPanel) apply(msg recordsLoadedMsg) bool {
	if msg.kind != p.kind || msg.seq != p.loadSeq {
		return false
	}
	if msg.err != nil {
		return true
	}
	p.rows = msg.rows
	p.refreshTable()
	return true
}

// Selected returns the row under the cursor.
func (p RecordPanel) Selected() (recordRow, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.rows) {
		return recordRow{}, false
	}
	return p.rows[i], true
}

func (p RecordPanel) Rows() []recordRow { return p.rows }

// Target returns the record behind the selected row, ready to be edited in
// place.
func (p RecordPanel) Target() (core.Record, bool) {
	row, ok := p.Selected()
	if !ok {
		return nil, false
	}
	if p.kind == core.KindPerformer {
		return &core.Performer{ID: row.ID, Name: row.Name, Genre: row.Detail}, true
	}
	return &core.Venue{ID: row.ID, Name: row.Name, Location: row.Detail}, true
}

func (p *RecordPanel) SetFocused(focused bool) {
	p.focused = focused
	if focused {
		p.table.Focus()
	} else {
		p.table.Blur()
	}
	p.table.SetStyles(tableStyles(focused))
}

func (p *RecordPanel) SetSize(width, height int) {
	p.width = width
	if height < 4 {
		height = 4
	}
	p.table.SetWidth(width)
	p.table.SetHeight(height - 1)
	p.table.SetColumns([]table.Column{
		{Title: "ID", Width: idColumnWidth},
		{Title: "Name", Width: p.textWidth()},
		{Title: p.detail, Width: p.textWidth()},
		{Title: "Concerts", Width: countColumnWidth},
	})
	p.refreshTable()
}

func (p RecordPanel) textWidth() int {
	w := (p.width - idColumnWidth - countColumnWidth - 8) / 2
	if w < 8 {
		w = 8
	}
	return w
}

func (p *RecordPanel) refreshTable() {
	tw := p.textWidth()
	rows := make([]table.Row, len(p.rows))
	for i, r := range p.rows {
		rows[i] = table.Row{
			strconv.FormatInt(r.ID, 10),
			util.TruncateText(r.Name, tw),
			util.TruncateText(r.Detail, tw),
			strconv.Itoa(r.Count),
		}
	}
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) {
		p.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (p *RecordPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p RecordPanel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, PanelTitleStyle.Render(p.title), p.table.View())
}
