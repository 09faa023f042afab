// Package archive converts the whole catalog to and from a portable document.
// Events reference performers and venues by their unique keys, so an archive
// can be restored into a store with different ids.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theakshaypant/concertdb/internal/core"
)

// Version of the document layout.
const Version = 1

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q: %w", s, core.ErrUnsupported)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type Dataset struct {
	Version    int         `yaml:"version" json:"version"`
	Performers []Performer `yaml:"performers" json:"performers"`
	Venues     []Venue     `yaml:"venues" json:"venues"`
	Events     []Event     `yaml:"events" json:"events"`
}

type Performer struct {
	Name  string `yaml:"name" json:"name"`
	Genre string `yaml:"genre" json:"genre"`
}

type Venue struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location" json:"location"`
}

type Event struct {
	Performer Performer `yaml:"performer" json:"performer"`
	Venue     Venue     `yaml:"venue" json:"venue"`
	Date      *string   `yaml:"date,omitempty" json:"date,omitempty"`
}

// Dump reads every record from store.
func Dump(ctx context.Context, store core.Store) (*Dataset, error) {
	ds := &Dataset{Version: Version, Performers: []Performer{}, Venues: []Venue{}, Events: []Event{}}

	performers, err := store.ListPerformers(ctx)
	if err != nil {
		return nil, err
	}
	byPerformer := make(map[int64]Performer, len(performers))
	for _, p := range performers {
		ap := Performer{Name: p.Name, Genre: p.Genre}
		byPerformer[p.ID] = ap
		ds.Performers = append(ds.Performers, ap)
	}

	venues, err := store.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	byVenue := make(map[int64]Venue, len(venues))
	for _, v := range venues {
		av := Venue{Name: v.Name, Location: v.Location}
		byVenue[v.ID] = av
		ds.Venues = append(ds.Venues, av)
	}

	rows, err := store.ListEvents(ctx, core.EventQuery{Sort: core.DefaultEventSort()})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		ds.Events = append(ds.Events, Event{
			Performer: byPerformer[r.PerformerID],
			Venue:     byVenue[r.VenueID],
			Date:      r.Date,
		})
	}
	return ds, nil
}

// Records validates the dataset and builds the records to save, performers and
// venues first. Events point at the built performers and venues, or at
// existing ones when lookup finds them in the store.
func (ds *Dataset) Records(ctx context.Context, lookup core.Store) ([]core.Record, error) {
	var records []core.Record
	performers := map[Performer]*core.Performer{}
	venues := map[Venue]*core.Venue{}
	type eventKey struct {
		p    *core.Performer
		v    *core.Venue
		date string
	}
	seen := map[eventKey]bool{}

	addPerformer := func(ap Performer) (*core.Performer, error) {
		p, err := core.NormalizePerformer(ap.Name, ap.Genre)
		if err != nil {
			return nil, fmt.Errorf("performer %q: %w", ap.Name, err)
		}
		key := Performer{Name: p.Name, Genre: p.Genre}
		if existing, ok := performers[key]; ok {
			return existing, nil
		}
		rec := &p
		if lookup != nil {
			if found, err := lookup.FindPerformer(ctx, p.Name, p.Genre); err == nil {
				rec = found
			}
		}
		if rec.ID == 0 {
			records = append(records, rec)
		}
		performers[key] = rec
		return rec, nil
	}
	addVenue := func(av Venue) (*core.Venue, error) {
		v, err := core.NormalizeVenue(av.Name, av.Location)
		if err != nil {
			return nil, fmt.Errorf("venue %q: %w", av.Name, err)
		}
		key := Venue{Name: v.Name, Location: v.Location}
		if existing, ok := venues[key]; ok {
			return existing, nil
		}
		rec := &v
		if lookup != nil {
			if found, err := lookup.FindVenue(ctx, v.Name, v.Location); err == nil {
				rec = found
			}
		}
		if rec.ID == 0 {
			records = append(records, rec)
		}
		venues[key] = rec
		return rec, nil
	}

	for _, p := range ds.Performers {
		if _, err := addPerformer(p); err != nil {
			return nil, err
		}
	}
	for _, v := range ds.Venues {
		if _, err := addVenue(v); err != nil {
			return nil, err
		}
	}
	for i, e := range ds.Events {
		p, err := addPerformer(e.Performer)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		v, err := addVenue(e.Venue)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		raw := ""
		if e.Date != nil {
			raw = *e.Date
		}
		date, err := core.NormalizeDate(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		if date != nil {
			raw = *date
		}
		key := eventKey{p: p, v: v, date: raw}
		if seen[key] {
			continue
		}
		seen[key] = true
		if p.ID != 0 && v.ID != 0 && lookup != nil {
			if _, err := lookup.FindEvent(ctx, p.ID, v.ID, date); err == nil {
				continue
			}
		}
		records = append(records, &core.Event{Performer: p, Venue: v, Date: date})
	}
	return records, nil
}

// Restore writes ds into store in one transaction. With replace set the
// store's records are swapped for the archive's; otherwise records already
// present are kept and skipped.
func Restore(ctx context.Context, store core.Store, ds *Dataset, replace bool) (int, error) {
	if ds.Version > Version {
		return 0, fmt.Errorf("archive version %d is newer than %d: %w", ds.Version, Version, core.ErrUnsupported)
	}
	lookup := store
	if replace {
		lookup = nil
	}
	records, err := ds.Records(ctx, lookup)
	if err != nil {
		return 0, err
	}
	save := store.Save
	if replace {
		save = store.Replace
	}
	if err := save(ctx, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Encode writes ds in the given format.
func Encode(w io.Writer, ds *Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Decode reads a dataset in the given format.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	ds := &Dataset{}
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(ds)
	default:
		err = yaml.NewDecoder(r).Decode(ds)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s archive: %w", format, err)
	}
	return ds, nil
}
