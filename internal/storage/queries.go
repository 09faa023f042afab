package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/metrics"
)

const eventListing = `SELECT e.id, e.performer_id, e.venue_id, p.name, v.name, e.date
	FROM events e
	JOIN performers p ON p.id = e.performer_id
	JOIN venues v ON v.id = e.venue_id`

func orderClause(sort core.EventSort) string {
	dir := "ASC"
	if sort.Direction == core.Descending {
		dir = "DESC"
	}
	switch sort.Column {
	case core.SortPerformer:
		return " ORDER BY p.name " + dir + ", e.id"
	case core.SortVenue:
		return " ORDER BY v.name " + dir + ", e.id"
	default:
		// Unscheduled events sort last in either direction.
		return " ORDER BY (CASE WHEN e.date IS NULL THEN 1 ELSE 0 END), e.date " + dir + ", e.id"
	}
}

// ListEvents returns every event joined to its performer and venue, ordered by
// q.Sort and narrowed by q.Filter.
func (s *Store) ListEvents(ctx context.Context, q core.EventQuery) ([]core.EventRow, error) {
	defer metrics.ObserveLoad("events", time.Now())

	rows, err := s.query(ctx, s.db, eventListing+orderClause(q.Sort))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []core.EventRow{}
	for rows.Next() {
		var r core.EventRow
		var date sql.NullString
		if err := rows.Scan(&r.EventID, &r.PerformerID, &r.VenueID, &r.PerformerName, &r.VenueName, &date); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		r.Date = nullableString(date)
		if r.Matches(q.Filter) {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

// ListPerformers returns every performer with the number of events it has.
func (s *Store) ListPerformers(ctx context.Context) ([]core.PerformerRow, error) {
	defer metrics.ObserveLoad("performers", time.Now())

	rows, err := s.query(ctx, s.db, `SELECT p.id, p.name, p.genre, COUNT(e.id)
		FROM performers p LEFT JOIN events e ON e.performer_id = p.id
		GROUP BY p.id, p.name, p.genre
		ORDER BY p.name, p.id`)
	if err != nil {
		return nil, fmt.Errorf("list performers: %w", err)
	}
	defer rows.Close()

	out := []core.PerformerRow{}
	for rows.Next() {
		var r core.PerformerRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Genre, &r.EventCount); err != nil {
			return nil, fmt.Errorf("scan performer: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListVenues returns every venue with the number of events held there.
func (s *Store) ListVenues(ctx context.Context) ([]core.VenueRow, error) {
	defer metrics.ObserveLoad("venues", time.Now())

	rows, err := s.query(ctx, s.db, `SELECT v.id, v.name, v.location, COUNT(e.id)
		FROM venues v LEFT JOIN events e ON e.venue_id = v.id
		GROUP BY v.id, v.name, v.location
		ORDER BY v.name, v.id`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	out := []core.VenueRow{}
	for rows.Next() {
		var r core.VenueRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Location, &r.EventCount); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Performer(ctx context.Context, id int64) (*core.Performer, error) {
	p := &core.Performer{}
	err := s.queryRow(ctx, s.db, `SELECT id, name, genre FROM performers WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Genre)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("performer %d", id))
	}
	return p, nil
}

func (s *Store) Venue(ctx context.Context, id int64) (*core.Venue, error) {
	v := &core.Venue{}
	err := s.queryRow(ctx, s.db, `SELECT id, name, location FROM venues WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &v.Location)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("venue %d", id))
	}
	return v, nil
}

// Event loads an event with its performer and venue attached.
func (s *Store) Event(ctx context.Context, id int64) (*core.Event, error) {
	e := &core.Event{Performer: &core.Performer{}, Venue: &core.Venue{}}
	var date sql.NullString
	err := s.queryRow(ctx, s.db, `SELECT e.id, p.id, p.name, p.genre, v.id, v.name, v.location, e.date
		FROM events e
		JOIN performers p ON p.id = e.performer_id
		JOIN venues v ON v.id = e.venue_id
		WHERE e.id = ?`, id).
		Scan(&e.ID, &e.Performer.ID, &e.Performer.Name, &e.Performer.Genre,
			&e.Venue.ID, &e.Venue.Name, &e.Venue.Location, &date)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("event %d", id))
	}
	e.PerformerID = e.Performer.ID
	e.VenueID = e.Venue.ID
	e.Date = nullableString(date)
	return e, nil
}

func (s *Store) FindPerformer(ctx context.Context, name, genre string) (*core.Performer, error) {
	p := &core.Performer{}
	err := s.queryRow(ctx, s.db, `SELECT id, name, genre FROM performers WHERE name = ? AND genre = ?`, name, genre).
		Scan(&p.ID, &p.Name, &p.Genre)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("performer %q (%s)", name, genre))
	}
	return p, nil
}

func (s *Store) FindVenue(ctx context.Context, name, location string) (*core.Venue, error) {
	v := &core.Venue{}
	err := s.queryRow(ctx, s.db, `SELECT id, name, location FROM venues WHERE name = ? AND location = ?`, name, location).
		Scan(&v.ID, &v.Name, &v.Location)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("venue %q (%s)", name, location))
	}
	return v, nil
}

// FindEvent looks up an event by its natural key. A nil date matches the
// unscheduled event of the pair.
func (s *Store) FindEvent(ctx context.Context, performerID, venueID int64, date *string) (*core.Event, error) {
	var id int64
	var err error
	if date == nil {
		err = s.queryRow(ctx, s.db, `SELECT id FROM events
			WHERE performer_id = ? AND venue_id = ? AND date IS NULL`,
			performerID, venueID).Scan(&id)
	} else {
		err = s.queryRow(ctx, s.db, `SELECT id FROM events
			WHERE performer_id = ? AND venue_id = ? AND date = ?`,
			performerID, venueID, *date).Scan(&id)
	}
	if err != nil {
		return nil, notFound(err, "event")
	}
	return s.Event(ctx, id)
}

// DeletePerformer removes a performer and, by cascade, its events.
func (s *Store) DeletePerformer(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM performers WHERE id = ?`, id)
	return checkUpdated(res, err, "performer", id)
}

// DeleteVenue removes a venue. Venues that still host events are refused by
// the database.
func (s *Store) DeleteVenue(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM venues WHERE id = ?`, id)
	return checkUpdated(res, err, "venue", id)
}
