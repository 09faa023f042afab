package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/storage"
)

func newTestModel(t *testing.T) (Model, *storage.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	phish := &core.Performer{Name: "Phish", Genre: "Jam Band"}
	dead := &core.Performer{Name: "Grateful Dead", Genre: "Rock"}
	rocks := &core.Venue{Name: "Red Rocks", Location: "Morrison, CO"}
	msg := &core.Venue{Name: "Madison Square Garden", Location: "New York, NY"}
	err = store.Save(ctx, phish, dead, rocks, msg,
		&core.Event{Performer: phish, Venue: rocks, Date: core.StringPtr("2024-08-30")},
		&core.Event{Performer: dead, Venue: msg, Date: core.StringPtr("1987-09-18")},
		&core.Event{Performer: phish, Venue: msg},
	)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := NewModel(store, ":memory:")
	m.noticeTimeout = 0
	return run(t, m, m.Init()), store
}

// run executes cmd and feeds the resulting messages back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
		return m
	default:
		return send(t, m, msg)
	}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = run(t, next.(Model), cmd)
	}
	return m
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	esc       = tea.KeyMsg{Type: tea.KeyEsc}
	right     = tea.KeyMsg{Type: tea.KeyRight}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
	ctrlC     = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func dates(rows []core.EventRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.DateOrPlaceholder()
	}
	return out
}

func TestInitialLoad(t *testing.T) {
	m, _ := newTestModel(t)

	got := strings.Join(dates(m.events.Rows()), ",")
	if want := "1987-09-18,2024-08-30,n/a"; got != want {
		t.Errorf("dates = %s, want %s", got, want)
	}
	if n := len(m.performers.Rows()); n != 2 {
		t.Errorf("got %d performers, want 2", n)
	}
	if n := len(m.venues.Rows()); n != 2 {
		t.Errorf("got %d venues, want 2", n)
	}
}

func TestResortCycle(t *testing.T) {
	m, _ := newTestModel(t)

	// Date starts ascending, so the next press flips it.
	m = send(t, m, keys("3"))
	if got := strings.Join(dates(m.events.Rows()), ","); got != "2024-08-30,1987-09-18,n/a" {
		t.Errorf("date descending = %s", got)
	}

	m = send(t, m, keys("1"))
	if m.events.Query().Sort != (core.EventSort{Column: core.SortPerformer, Direction: core.Descending}) {
		t.Errorf("unexpected sort %+v", m.events.Query().Sort)
	}
	if got := strings.Join(m.events.columns.Titles(), "|"); got != "Performer ↓|Venue|Date" {
		t.Errorf("titles = %s", got)
	}
	if first := m.events.Rows()[0].PerformerName; first != "Phish" {
		t.Errorf("first performer = %s, want Phish", first)
	}

	m = send(t, m, keys("1"))
	if first := m.events.Rows()[0].PerformerName; first != "Grateful Dead" {
		t.Errorf("first performer = %s, want Grateful Dead", first)
	}
}

func TestFilterToggle(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keys("/"))
	if !m.events.FilterVisible() {
		t.Fatal("expected filter to be visible")
	}
	m = send(t, m, keys("GARDEN"))
	rows := m.events.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if !r.Matches("garden") {
			t.Errorf("row %+v does not match the filter", r)
		}
	}

	// Keys go to the filter, not to the panel.
	m = send(t, m, keys("q"))
	if len(m.events.Rows()) != 0 {
		t.Errorf("expected no rows for filter gardenq")
	}
	m = send(t, m, backspace)

	m = send(t, m, esc)
	if m.events.FilterVisible() || m.events.Query().Filter != "" {
		t.Fatal("expected filter to be hidden and cleared")
	}
	if len(m.events.Rows()) != 3 {
		t.Errorf("got %d rows after clearing filter, want 3", len(m.events.Rows()))
	}
}

func TestFilterRefocus(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keys("/"), keys("phish"), enter)
	if !m.events.FilterVisible() || m.events.Capturing() {
		t.Fatal("expected a kept, unfocused filter")
	}

	m = send(t, m, keys("/"))
	if !m.events.Capturing() || m.events.Query().Filter != "phish" {
		t.Fatalf("expected the kept filter to be focused, filter = %q", m.events.Query().Filter)
	}
	m = send(t, m, backspace, backspace, backspace, backspace, backspace, keys("dead"), enter)
	rows := m.events.Rows()
	if len(rows) != 1 || rows[0].PerformerName != "Grateful Dead" {
		t.Errorf("unexpected rows %+v", rows)
	}

	m = send(t, m, esc)
	if m.events.FilterVisible() || len(m.events.Rows()) != 3 {
		t.Errorf("expected esc to clear the kept filter, got %d rows", len(m.events.Rows()))
	}
}

func TestInterruptQuits(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		name  string
		setup []tea.Msg
	}{
		{"main view", nil},
		{"open form", []tea.Msg{keys("a")}},
		{"focused filter", []tea.Msg{keys("/")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := send(t, m, tt.setup...)
			_, cmd := m.Update(ctrlC)
			if cmd == nil {
				t.Fatal("expected a quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("ctrl+c did not quit")
			}
		})
	}
}

func TestAddPerformer(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, tab, keys("a"))
	if m.form == nil || m.form.Title() != "Add New Performer" {
		t.Fatal("expected performer form")
	}
	m = send(t, m, keys("  Goose "), tab, keys("Jam Band"), enter)

	if m.form != nil {
		t.Error("expected form to be closed")
	}
	if m.notice.text != "Saved successfully!" {
		t.Errorf("notice = %q", m.notice.text)
	}
	if _, err := store.FindPerformer(context.Background(), "Goose", "Jam Band"); err != nil {
		t.Errorf("expected trimmed performer to be stored: %v", err)
	}
	if n := len(m.performers.Rows()); n != 3 {
		t.Errorf("got %d performers after reload, want 3", n)
	}
}

func TestAddPerformerInvalid(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tab, keys("a"), keys("Goose"), enter)
	if m.form != nil {
		t.Error("expected form to be dismissed")
	}
	if m.notice.text != "Invalid name & genre" || m.notice.severity != core.SeverityError {
		t.Errorf("notice = %+v", m.notice)
	}
	if n := len(m.performers.Rows()); n != 2 {
		t.Errorf("got %d performers, want 2", n)
	}
}

func TestAddVenueNormalizesLocation(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, tab, tab, keys("a"), keys("The Fillmore"), tab, keys("SAN FRANCISCO, CA"), enter)
	if _, err := store.FindVenue(context.Background(), "The Fillmore", "San Francisco, CA"); err != nil {
		t.Errorf("expected normalized venue: %v", err)
	}

	m = send(t, m, keys("a"), keys("Metro"), tab, keys("chicago, il"), enter)
	if m.notice.severity != core.SeverityError {
		t.Errorf("expected error notice, got %+v", m.notice)
	}
	if n := len(m.venues.Rows()); n != 3 {
		t.Errorf("got %d venues, want 3", n)
	}
}

func TestCancelForm(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tab, keys("a"), keys("Goose"), esc)
	if m.form != nil {
		t.Error("expected form to be closed")
	}
	if m.notice.text != "" {
		t.Errorf("expected no notice, got %q", m.notice.text)
	}
}

func TestAddEventRejectsBadDate(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keys("a"))
	if m.form == nil || m.form.Title() != "Add New Event" {
		t.Fatal("expected event form")
	}
	m = send(t, m, tab, tab, keys("2024/07/04"), enter)
	if m.notice.text != "Invalid date format: use YYYY-MM-DD" {
		t.Errorf("notice = %q", m.notice.text)
	}
	if n := len(m.events.Rows()); n != 3 {
		t.Errorf("got %d events, want 3", n)
	}
}

func TestAddDuplicateEvent(t *testing.T) {
	m, _ := newTestModel(t)

	// Candidates are sorted by name: Grateful Dead, Phish and
	// Madison Square Garden, Red Rocks.
	m = send(t, m, keys("a"), right, tab, right, tab, keys("2024-08-30"), enter)
	if !strings.HasPrefix(m.notice.text, "Error saving object:") {
		t.Errorf("notice = %q", m.notice.text)
	}
	if n := len(m.events.Rows()); n != 3 {
		t.Errorf("got %d events, want 3", n)
	}

	m = send(t, m, keys("a"), right, tab, right, tab, keys("2024-07-04"), enter)
	if m.notice.text != "Saved successfully!" {
		t.Errorf("notice = %q", m.notice.text)
	}
	if n := len(m.events.Rows()); n != 4 {
		t.Errorf("got %d events, want 4", n)
	}
}

func TestEditEventInPlace(t *testing.T) {
	m, store := newTestModel(t)

	row, ok := m.events.Selected()
	if !ok || row.PerformerName != "Grateful Dead" {
		t.Fatalf("unexpected selection %+v", row)
	}
	m = send(t, m, keys("e"))
	if m.form == nil || m.form.Title() != "Edit Event" {
		t.Fatal("expected edit form")
	}
	if m.form.Value(2) != "1987-09-18" {
		t.Errorf("date field = %q", m.form.Value(2))
	}
	m = send(t, m, tab, tab)
	for range len("1987-09-18") {
		m = send(t, m, backspace)
	}
	m = send(t, m, keys("1987-09-19"), enter)

	e, err := store.Event(context.Background(), row.EventID)
	if err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if e.DateOrPlaceholder() != "1987-09-19" || e.Performer.Name != "Grateful Dead" {
		t.Errorf("unexpected event %+v", e)
	}
	if n := len(m.events.Rows()); n != 3 {
		t.Errorf("got %d events, want 3", n)
	}
}

func TestEditMissingEventIsFatal(t *testing.T) {
	m, store := newTestModel(t)

	row, _ := m.events.Selected()
	if err := store.DeletePerformer(context.Background(), row.PerformerID); err != nil {
		t.Fatalf("delete performer: %v", err)
	}
	m = send(t, m, keys("e"))
	if m.Err() == nil {
		t.Fatal("expected a fatal error for a vanished event")
	}
}

func TestEditPerformer(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, tab, keys("e"))
	if m.form == nil || m.form.Title() != "Edit Performer" {
		t.Fatal("expected edit form")
	}
	m = send(t, m, tab)
	for range len("Rock") {
		m = send(t, m, backspace)
	}
	m = send(t, m, keys("Psychedelic Rock"), enter)

	p, err := store.FindPerformer(context.Background(), "Grateful Dead", "Psychedelic Rock")
	if err != nil {
		t.Fatalf("find edited performer: %v", err)
	}
	if p.ID != m.performers.Rows()[0].ID {
		t.Errorf("expected the same performer to be updated")
	}
	if n := len(m.performers.Rows()); n != 2 {
		t.Errorf("got %d performers, want 2", n)
	}
}

func TestRefreshNotices(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []string{"Events table refreshed!", "Performers table refreshed!", "Venues table refreshed!"}
	for i, want := range tests {
		if i > 0 {
			m = send(t, m, tab)
		}
		m = send(t, m, keys("r"))
		if m.notice.text != want {
			t.Errorf("notice = %q, want %q", m.notice.text, want)
		}
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keys("?"))
	if !m.showHelp {
		t.Fatal("expected help overlay")
	}
	// The dismissing key is swallowed.
	m = send(t, m, keys("a"))
	if m.showHelp || m.form != nil {
		t.Error("expected overlay closed and no form opened")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.View(); got != "Loading..." {
		t.Errorf("view before size = %q", got)
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"Events", "Performers", "Venues", "Phish"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
