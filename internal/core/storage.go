package core

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup by id or unique key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrUnsupported is returned when a backend cannot perform an optional operation.
	ErrUnsupported = errors.New("operation not supported")
)

// Store handles the persistence of performers, venues and events.
type Store interface {
	// Save inserts records with a zero ID and updates the rest, all in one
	// transaction. On error nothing is written and assigned IDs are reset.
	Save(ctx context.Context, records ...Record) error

	// ListPerformers returns every performer sorted by name with its event count.
	ListPerformers(ctx context.Context) ([]PerformerRow, error)
	// ListVenues returns every venue sorted by name with its event count.
	ListVenues(ctx context.Context) ([]VenueRow, error)
	// ListEvents returns event rows joined with performer and venue names.
	ListEvents(ctx context.Context, q EventQuery) ([]EventRow, error)

	Performer(ctx context.Context, id int64) (*Performer, error)
	Venue(ctx context.Context, id int64) (*Venue, error)
	// Event returns the event with its Performer and Venue populated.
	Event(ctx context.Context, id int64) (*Event, error)

	// Lookups by unique key.
	FindPerformer(ctx context.Context, name, genre string) (*Performer, error)
	FindVenue(ctx context.Context, name, location string) (*Venue, error)
	FindEvent(ctx context.Context, performerID, venueID int64, date *string) (*Event, error)

	// DeletePerformer removes a performer and, by cascade, all its events.
	DeletePerformer(ctx context.Context, id int64) error
	// DeleteVenue fails while any event still references the venue.
	DeleteVenue(ctx context.Context, id int64) error
	// Replace removes every record and saves records, in one transaction.
	// On error the store is left as it was.
	Replace(ctx context.Context, records ...Record) error

	Close() error
}

// PerformerRow is a performer as shown in the performers listing.
type PerformerRow struct {
	Performer
	EventCount int
}

// VenueRow is a venue as shown in the venues listing.
type VenueRow struct {
	Venue
	EventCount int
}

// EventRow is one line of the events listing. It keeps the IDs of the rows it
// was built from so a selected row never has to be matched by display text.
type EventRow struct {
	EventID       int64
	PerformerID   int64
	VenueID       int64
	PerformerName string
	VenueName     string
	Date          *string
}

// DateOrPlaceholder returns the raw date or DatePlaceholder when unscheduled.
func (r EventRow) DateOrPlaceholder() string {
	if r.Date == nil {
		return DatePlaceholder
	}
	return *r.Date
}

// Matches reports whether filter is a case-insensitive substring of the
// performer name, the venue name or the raw date. An empty filter matches all.
func (r EventRow) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	needle := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(r.PerformerName), needle) ||
		strings.Contains(strings.ToLower(r.VenueName), needle) {
		return true
	}
	return r.Date != nil && strings.Contains(strings.ToLower(*r.Date), needle)
}

// SortColumn is a sortable column of the events listing.
type SortColumn int

const (
	SortPerformer SortColumn = iota
	SortVenue
	SortDate
)

func (c SortColumn) String() string {
	switch c {
	case SortPerformer:
		return "Performer"
	case SortVenue:
		return "Venue"
	case SortDate:
		return "Date"
	default:
		return "Unknown"
	}
}

// Direction of a sort. The zero value means the column is not sorted.
type Direction int

const (
	Unsorted Direction = iota
	Descending
	Ascending
)

// Next returns the direction after one more click on a column header:
// unsorted -> descending -> ascending -> descending ...
func (d Direction) Next() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// EventSort selects the ordering of the events listing.
type EventSort struct {
	Column    SortColumn
	Direction Direction
}

// DefaultEventSort orders by date ascending, unscheduled events last.
func DefaultEventSort() EventSort {
	return EventSort{Column: SortDate, Direction: Ascending}
}

// EventQuery configures which event rows to load.
type EventQuery struct {
	Sort EventSort
	// Case-insensitive substring. Empty means no restriction.
	Filter string
}
