package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/metrics"
)

// Save inserts records with a zero ID and updates the others, in order, inside
// one transaction. Event IDs for performer and venue are taken from the
// attached Performer/Venue when present, so records created earlier in the
// same call can be referenced. Any failure rolls everything back, resets the
// IDs handed out during the attempt and returns the engine's error as is.
func (s *Store) Save(ctx context.Context, records ...core.Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.save(ctx, false, records)
}

// Replace deletes every record and saves records in the same transaction, so
// a failure leaves the previous catalog in place.
func (s *Store) Replace(ctx context.Context, records ...core.Record) error {
	return s.save(ctx, true, records)
}

func (s *Store) save(ctx context.Context, purge bool, records []core.Record) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var undo []func()
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			slog.Warn("save rolled back", "records", len(records), "err", retErr)
		}
		for _, rec := range records {
			if rec != nil {
				metrics.ObserveSave(rec.Kind().String(), retErr)
			}
		}
	}()

	if purge {
		for _, table := range []string{"events", "performers", "venues"} {
			if _, err := s.exec(ctx, tx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
		}
	}

	for _, rec := range records {
		switch r := rec.(type) {
		case nil:
			continue
		case *core.Performer:
			if r == nil {
				continue
			}
			err = s.savePerformer(ctx, tx, r, &undo)
		case *core.Venue:
			if r == nil {
				continue
			}
			err = s.saveVenue(ctx, tx, r, &undo)
		case *core.Event:
			if r == nil {
				continue
			}
			err = s.saveEvent(ctx, tx, r, &undo)
		default:
			err = fmt.Errorf("unsupported record type %T", rec)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) savePerformer(ctx context.Context, tx *sql.Tx, p *core.Performer, undo *[]func()) error {
	if p.ID != 0 {
		res, err := s.exec(ctx, tx, `UPDATE performers SET name = ?, genre = ? WHERE id = ?`, p.Name, p.Genre, p.ID)
		return checkUpdated(res, err, "performer", p.ID)
	}
	err := s.queryRow(ctx, tx, `INSERT INTO performers (name, genre) VALUES (?, ?) RETURNING id`,
		p.Name, p.Genre).Scan(&p.ID)
	*undo = append(*undo, func() { p.ID = 0 })
	return err
}

func (s *Store) saveVenue(ctx context.Context, tx *sql.Tx, v *core.Venue, undo *[]func()) error {
	if v.ID != 0 {
		res, err := s.exec(ctx, tx, `UPDATE venues SET name = ?, location = ? WHERE id = ?`, v.Name, v.Location, v.ID)
		return checkUpdated(res, err, "venue", v.ID)
	}
	err := s.queryRow(ctx, tx, `INSERT INTO venues (name, location) VALUES (?, ?) RETURNING id`,
		v.Name, v.Location).Scan(&v.ID)
	*undo = append(*undo, func() { v.ID = 0 })
	return err
}

func (s *Store) saveEvent(ctx context.Context, tx *sql.Tx, e *core.Event, undo *[]func()) error {
	if e.Performer != nil {
		e.PerformerID = e.Performer.ID
	}
	if e.Venue != nil {
		e.VenueID = e.Venue.ID
	}
	if e.ID != 0 {
		res, err := s.exec(ctx, tx, `UPDATE events SET performer_id = ?, venue_id = ?, date = ? WHERE id = ?`,
			e.PerformerID, e.VenueID, e.Date, e.ID)
		return checkUpdated(res, err, "event", e.ID)
	}
	err := s.queryRow(ctx, tx, `INSERT INTO events (performer_id, venue_id, date) VALUES (?, ?, ?) RETURNING id`,
		e.PerformerID, e.VenueID, e.Date).Scan(&e.ID)
	*undo = append(*undo, func() { e.ID = 0 })
	return err
}

func checkUpdated(res sql.Result, err error, what string, id int64) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
	}
	return nil
}
