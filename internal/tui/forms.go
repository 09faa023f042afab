package tui

import (
	"fmt"

	"github.com/theakshaypant/concertdb/internal/core"
)

// performerForm adds a performer when target has no ID, else edits target in
// place.
func performerForm(target *core.Performer) *Form {
	title := "Add New Performer"
	if target.ID != 0 {
		title = "Edit Performer"
	}
	f := newForm(title, func(f *Form) (core.Record, error) {
		p, err := core.NormalizePerformer(f.Value(0), f.Value(1))
		if err != nil {
			return nil, err
		}
		target.Name, target.Genre = p.Name, p.Genre
		return target, nil
	})
	f.addText("Name", "Enter performer name", target.Name)
	f.addText("Genre", "Enter genre", target.Genre)
	return f
}

func venueForm(target *core.Venue) *Form {
	title := "Add New Venue"
	if target.ID != 0 {
		title = "Edit Venue"
	}
	f := newForm(title, func(f *Form) (core.Record, error) {
		v, err := core.NormalizeVenue(f.Value(0), f.Value(1))
		if err != nil {
			return nil, err
		}
		target.Name, target.Location = v.Name, v.Location
		return target, nil
	})
	f.addText("Name", "Enter venue name", target.Name)
	f.addText("Location", "City, ST", target.Location)
	return f
}

// eventForm picks a performer and a venue from the candidates, sorted by name
// as the store lists them, and takes an optional date.
func eventForm(target *core.Event, performers []core.PerformerRow, venues []core.VenueRow) *Form {
	title := "Add New Event"
	if target.ID != 0 {
		title = "Edit Event"
	}

	performerLabels := make([]string, len(performers))
	performerIdx := 0
	for i, p := range performers {
		performerLabels[i] = fmt.Sprintf("%s (%s)", p.Name, p.Genre)
		if p.ID == target.PerformerID {
			performerIdx = i
		}
	}
	venueLabels := make([]string, len(venues))
	venueIdx := 0
	for i, v := range venues {
		venueLabels[i] = fmt.Sprintf("%s (%s)", v.Name, v.Location)
		if v.ID == target.VenueID {
			venueIdx = i
		}
	}
	date := ""
	if target.Date != nil {
		date = *target.Date
	}

	f := newForm(title, func(f *Form) (core.Record, error) {
		pi, vi := f.Selected(0), f.Selected(1)
		if pi < 0 || pi >= len(performers) {
			return nil, fmt.Errorf("performer choice %d: %w", pi, core.ErrNotFound)
		}
		if vi < 0 || vi >= len(venues) {
			return nil, fmt.Errorf("venue choice %d: %w", vi, core.ErrNotFound)
		}
		d, err := core.NormalizeDate(f.Value(2))
		if err != nil {
			return nil, err
		}
		performer := performers[pi].Performer
		venue := venues[vi].Venue
		target.Performer = &performer
		target.Venue = &venue
		target.Date = d
		return target, nil
	})
	f.addChoice("Performer", performerLabels, performerIdx)
	f.addChoice("Venue", venueLabels, venueIdx)
	f.addText("Date", "YYYY-MM-DD (empty when unscheduled)", date)
	return f
}
