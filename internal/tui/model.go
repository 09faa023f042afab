package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/theakshaypant/concertdb/internal/core"
)

// Panel identifies the focused listing.
type Panel int

const (
	PanelEvents Panel = iota
	PanelPerformers
	PanelVenues
)

const defaultNoticeTimeout = 4 * time.Second

// Model is the Bubble Tea model for the TUI
type Model struct {
	store      core.Store
	location   string
	keys       KeyMap
	events     EventsPanel
	performers RecordPanel
	venues     RecordPanel
	focus      Panel
	form       *Form
	notice     noticeMsg
	noticeSeq  int
	// Zero keeps notices until the next one.
	noticeTimeout time.Duration
	showHelp      bool
	compactMode   bool
	width         int
	height        int
	err           error
	initCmd       tea.Cmd
}

// NewModel creates a new TUI model over store. location is shown in the header.
func NewModel(store core.Store, location string) Model {
	m := Model{
		store:         store,
		location:      location,
		keys:          DefaultKeyMap,
		events:        NewEventsPanel(store),
		performers:    NewPerformersPanel(store),
		venues:        NewVenuesPanel(store),
		noticeTimeout: defaultNoticeTimeout,
	}
	m.applyFocus()
	m.initCmd = m.reloadAll()
	return m
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error { return m.err }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

func (m *Model) reloadAll() tea.Cmd {
	return tea.Batch(m.events.Load(), m.performers.Load(), m.venues.Load())
}

func (m *Model) applyFocus() {
	m.events.SetFocused(m.focus == PanelEvents)
	m.performers.SetFocused(m.focus == PanelPerformers)
	m.venues.SetFocused(m.focus == PanelVenues)
}

func (m *Model) notify(text string, severity core.Severity) tea.Cmd {
	m.notice = noticeMsg{text: text, severity: severity}
	m.noticeSeq++
	if m.noticeTimeout == 0 {
		return nil
	}
	seq := m.noticeSeq
	return tea.Tick(m.noticeTimeout, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

// save persists rec through the shared helper and reports the outcome.
func (m Model) save(rec core.Record) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		var n noticeMsg
		_ = core.SaveAndNotify(context.Background(), store, core.NotifyFunc(func(text string, severity core.Severity) {
			n = noticeMsg{text: text, severity: severity}
		}), rec)
		return savedMsg{notice: n}
	}
}

// loadCandidates fetches the performers and venues the event form offers and,
// when editing, the event itself by its id.
func (m Model) loadCandidates(eventID int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx := context.Background()
		msg := candidatesLoadedMsg{}
		if eventID != 0 {
			msg.target, msg.err = store.Event(ctx, eventID)
			if msg.err != nil {
				return msg
			}
		}
		if msg.performers, msg.err = store.ListPerformers(ctx); msg.err != nil {
			return msg
		}
		msg.venues, msg.err = store.ListVenues(ctx)
		return msg
	}
}

func fatal(err error) tea.Cmd {
	return func() tea.Msg { return fatalMsg{err: err} }
}

// calculateLayout sizes the panels for the current window.
func (m *Model) calculateLayout() {
	width, height := m.width-4, m.height-2
	if height < 16 {
		height = 16
	}
	// Header, notice line and help bar
	content := height - 5
	m.compactMode = width < 70

	if m.compactMode {
		m.events.SetSize(width-4, content-2)
		m.performers.SetSize(width-4, content-2)
		m.venues.SetSize(width-4, content-2)
		return
	}
	top := content * 55 / 100
	bottom := content - top
	half := (width - 1) / 2
	m.events.SetSize(width-4, top-2)
	m.performers.SetSize(half-4, bottom-2)
	m.venues.SetSize(width-1-half-4, bottom-2)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.calculateLayout()
		return m, nil

	case eventsLoadedMsg:
		if m.events.apply(msg) && msg.err != nil {
			cmd := m.notify("Error loading events: "+msg.err.Error(), core.SeverityError)
			return m, cmd
		}
		return m, nil

	case recordsLoadedMsg:
		applied := m.performers.apply(msg) || m.venues.apply(msg)
		if applied && msg.err != nil {
			cmd := m.notify("Error loading "+msg.kind.String()+"s: "+msg.err.Error(), core.SeverityError)
			return m, cmd
		}
		return m, nil

	case candidatesLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, core.ErrNotFound) {
				return m, fatal(msg.err)
			}
			cmd := m.notify("Error loading choices: "+msg.err.Error(), core.SeverityError)
			return m, cmd
		}
		if len(msg.performers) == 0 || len(msg.venues) == 0 {
			cmd := m.notify("Add a performer and a venue first", core.SeverityWarning)
			return m, cmd
		}
		target := msg.target
		if target == nil {
			target = &core.Event{}
		}
		m.form = eventForm(target, msg.performers, msg.venues)
		return m, nil

	case formResultMsg:
		m.form = nil
		switch {
		case errors.Is(msg.err, core.ErrNotFound):
			return m, fatal(msg.err)
		case msg.err != nil:
			cmd := m.notify(msg.err.Error(), core.SeverityError)
			return m, cmd
		case msg.record != nil:
			return m, m.save(msg.record)
		}
		return m, nil

	case savedMsg:
		cmd := tea.Batch(m.notify(msg.notice.text, msg.notice.severity), m.reloadAll())
		return m, cmd

	case noticeMsg:
		cmd := m.notify(msg.text, msg.severity)
		return m, cmd

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = noticeMsg{}
		}
		return m, nil

	case fatalMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m, tea.Quit
	}
	if m.form != nil {
		return m, m.form.Update(msg)
	}
	// When help overlay is shown, any key dismisses it
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.focus == PanelEvents && m.events.Capturing() {
		cmd := m.events.updateFilter(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % 3
		m.applyFocus()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Add):
		return m.add()

	case key.Matches(msg, m.keys.Edit):
		return m.edit()
	}

	if m.focus == PanelEvents {
		switch {
		case m.events.FilterVisible() && key.Matches(msg, defaultFilterKeys.Close):
			cmd := m.events.closeFilter()
			return m, cmd
		case key.Matches(msg, m.keys.Filter):
			cmd := m.events.ToggleFilter()
			return m, cmd
		case key.Matches(msg, m.keys.SortFirst):
			cmd := m.events.Resort(0)
			return m, cmd
		case key.Matches(msg, m.keys.SortMid):
			cmd := m.events.Resort(1)
			return m, cmd
		case key.Matches(msg, m.keys.SortLast):
			cmd := m.events.Resort(2)
			return m, cmd
		}
		cmd := m.events.Update(msg)
		return m, cmd
	}
	cmd := m.focusedRecords().Update(msg)
	return m, cmd
}

func (m *Model) focusedRecords() *RecordPanel {
	if m.focus == PanelVenues {
		return &m.venues
	}
	return &m.performers
}

func (m *Model) refresh() tea.Cmd {
	switch m.focus {
	case PanelPerformers:
		return tea.Batch(m.performers.Load(), m.notify("Performers table refreshed!", core.SeverityInformation))
	case PanelVenues:
		return tea.Batch(m.venues.Load(), m.notify("Venues table refreshed!", core.SeverityInformation))
	default:
		return tea.Batch(m.events.Load(), m.notify("Events table refreshed!", core.SeverityInformation))
	}
}

func (m Model) add() (tea.Model, tea.Cmd) {
	switch m.focus {
	case PanelPerformers:
		m.form = performerForm(&core.Performer{})
	case PanelVenues:
		m.form = venueForm(&core.Venue{})
	default:
		return m, m.loadCandidates(0)
	}
	return m, nil
}

func (m Model) edit() (tea.Model, tea.Cmd) {
	if m.focus == PanelEvents {
		row, ok := m.events.Selected()
		if !ok {
			cmd := m.notify("No event selected", core.SeverityWarning)
			return m, cmd
		}
		return m, m.loadCandidates(row.EventID)
	}
	target, ok := m.focusedRecords().Target()
	if !ok {
		cmd := m.notify("Invalid row selection", core.SeverityError)
		return m, cmd
	}
	switch t := target.(type) {
	case *core.Performer:
		m.form = performerForm(t)
	case *core.Venue:
		m.form = venueForm(t)
	}
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var content string
	switch {
	case m.form != nil:
		content = lipgloss.Place(m.width-4, m.contentHeight(), lipgloss.Center, lipgloss.Center, m.form.View())
	case m.showHelp:
		content = m.renderHelpPanel()
	case m.compactMode:
		content = m.panelStyle(m.focus).Width(m.width - 6).Render(m.panelView(m.focus))
	default:
		half := (m.width - 5) / 2
		top := m.panelStyle(PanelEvents).Width(m.width - 6).Render(m.events.View())
		left := m.panelStyle(PanelPerformers).Width(half - 2).Render(m.performers.View())
		right := m.panelStyle(PanelVenues).Width(m.width - 5 - half - 2).Render(m.venues.View())
		content = lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	}

	return AppStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, header, content, m.renderNotice(), m.renderHelp()),
	)
}

func (m Model) contentHeight() int {
	h := m.height - 9
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) panelStyle(p Panel) lipgloss.Style {
	if p == m.focus {
		return FocusedPanelStyle
	}
	return PanelStyle
}

func (m Model) panelView(p Panel) string {
	switch p {
	case PanelPerformers:
		return m.performers.View()
	case PanelVenues:
		return m.venues.View()
	default:
		return m.events.View()
	}
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("♪ concertdb")
	where := lipgloss.NewStyle().Foreground(mutedColor).Render(m.location)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", where)
}

func (m Model) renderNotice() string {
	if m.notice.text == "" {
		return ""
	}
	text := ansi.Truncate(m.notice.text, max(m.width-4, 10), "…")
	switch m.notice.severity {
	case core.SeverityError:
		return ErrorStyle.Render(text)
	case core.SeverityWarning:
		return WarningStyle.Render(text)
	default:
		return InfoStyle.Render(text)
	}
}

func (m Model) renderHelp() string {
	keys := []string{
		HelpKeyStyle.Render("tab") + " panel",
		HelpKeyStyle.Render("a") + " add",
		HelpKeyStyle.Render("e") + " edit",
		HelpKeyStyle.Render("r") + " refresh",
	}
	if m.focus == PanelEvents {
		keys = append(keys,
			HelpKeyStyle.Render("1/2/3") + " sort",
			HelpKeyStyle.Render("/") + " filter",
		)
	}
	keys = append(keys, HelpKeyStyle.Render("q")+" quit")

	fullLine := strings.Join(keys, "  •  ")
	if lipgloss.Width(fullLine) > m.width-4 {
		// Doesn't fit, show minimal hint
		return HelpStyle.Render(HelpKeyStyle.Render("?") + " help")
	}
	return HelpStyle.Render(fullLine)
}

func (m Model) renderHelpPanel() string {
	header := PanelTitleStyle.Render("Keyboard Shortcuts")

	lines := []string{
		"",
		HelpKeyStyle.Render("  ↑/↓        ") + " Move selection",
		HelpKeyStyle.Render("  tab        ") + " Switch panel",
		HelpKeyStyle.Render("  a          ") + " Add a record to the focused panel",
		HelpKeyStyle.Render("  e          ") + " Edit the selected record",
		HelpKeyStyle.Render("  r          ") + " Refresh the focused panel",
		HelpKeyStyle.Render("  1 / 2 / 3  ") + " Sort events by performer / venue / date",
		HelpKeyStyle.Render("  /          ") + " Show or hide the events filter",
		HelpKeyStyle.Render("  q / ctrl+c ") + " Quit",
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("  Press any key to close"),
	}

	return FocusedPanelStyle.Width(m.width - 6).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n")),
	)
}
