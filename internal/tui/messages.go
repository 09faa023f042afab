package tui

import "github.com/theakshaypant/concertdb/internal/core"

// Messages
type eventsLoadedMsg struct {
	seq  int
	rows []core.EventRow
	err  error
}

type recordsLoadedMsg struct {
	kind core.Kind
	seq  int
	rows []recordRow
	err  error
}

// candidatesLoadedMsg carries what the event form needs. target is nil when
// adding.
type candidatesLoadedMsg struct {
	performers []core.PerformerRow
	venues     []core.VenueRow
	target     *core.Event
	err        error
}

// formResultMsg is the single outcome of a modal: a validated record, a
// validation error, or neither when the user cancelled.
type formResultMsg struct {
	record core.Record
	err    error
}

type savedMsg struct {
	notice noticeMsg
}

type noticeMsg struct {
	text     string
	severity core.Severity
}

type clearNoticeMsg struct {
	seq int
}

// fatalMsg ends the program; the error is reported by Model.Err.
type fatalMsg struct {
	err error
}
