package archive

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), storage.Config{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSampleRestore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	n, err := Restore(ctx, s, Sample(), false)
	if err != nil {
		t.Fatalf("restore sample: %v", err)
	}
	// 6 performers, 4 venues, 27 events
	if n != 37 {
		t.Errorf("saved %d records, want 37", n)
	}

	// Seeding twice adds nothing.
	n, err = Restore(ctx, s, Sample(), false)
	if err != nil {
		t.Fatalf("restore sample again: %v", err)
	}
	if n != 0 {
		t.Errorf("saved %d records on second restore, want 0", n)
	}
}

func TestDumpRestoreAcrossStores(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	if _, err := Restore(ctx, src, Sample(), false); err != nil {
		t.Fatalf("restore sample: %v", err)
	}
	unscheduled := &core.Event{}
	p, _ := src.FindPerformer(ctx, "Radiohead", "Alternative Rock")
	v, _ := src.FindVenue(ctx, "The Fillmore", "San Francisco, CA")
	unscheduled.Performer, unscheduled.Venue = p, v
	if err := src.Save(ctx, unscheduled); err != nil {
		t.Fatalf("save unscheduled event: %v", err)
	}

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			ds, err := Dump(ctx, src)
			if err != nil {
				t.Fatalf("dump: %v", err)
			}
			var buf bytes.Buffer
			if err := Encode(&buf, ds, format); err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			dst := openStore(t)
			if _, err := Restore(ctx, dst, decoded, true); err != nil {
				t.Fatalf("restore: %v", err)
			}
			want, _ := src.ListEvents(ctx, core.EventQuery{Sort: core.DefaultEventSort()})
			got, _ := dst.ListEvents(ctx, core.EventQuery{Sort: core.DefaultEventSort()})
			if len(got) != len(want) {
				t.Fatalf("got %d events, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i].PerformerName != want[i].PerformerName ||
					got[i].VenueName != want[i].VenueName ||
					got[i].DateOrPlaceholder() != want[i].DateOrPlaceholder() {
					t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestRestoreReplace(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := Restore(ctx, s, Sample(), false); err != nil {
		t.Fatalf("restore sample: %v", err)
	}

	small := &Dataset{
		Version:    Version,
		Performers: []Performer{{Name: "Phish", Genre: "Rock"}},
		Events: []Event{{
			Performer: Performer{Name: "Phish", Genre: "Rock"},
			Venue:     Venue{Name: "Red Rocks Amphitheatre", Location: "MORRISON, CO"},
			Date:      core.StringPtr("2024-07-04"),
		}},
	}
	if _, err := Restore(ctx, s, small, true); err != nil {
		t.Fatalf("restore replace: %v", err)
	}
	rows, _ := s.ListEvents(ctx, core.EventQuery{Sort: core.DefaultEventSort()})
	if len(rows) != 1 || rows[0].PerformerName != "Phish" {
		t.Errorf("unexpected rows after replace: %+v", rows)
	}
	if _, err := s.FindVenue(ctx, "Red Rocks Amphitheatre", "Morrison, CO"); err != nil {
		t.Errorf("expected normalized venue: %v", err)
	}
}

func TestRestoreInvalidKeepsStore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := Restore(ctx, s, Sample(), false); err != nil {
		t.Fatalf("restore sample: %v", err)
	}

	bad := &Dataset{Version: Version, Venues: []Venue{{Name: "Metro", Location: "chicago, il"}}}
	_, err := Restore(ctx, s, bad, true)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	rows, _ := s.ListEvents(ctx, core.EventQuery{})
	if len(rows) != 27 {
		t.Errorf("store changed after a rejected archive: %d events", len(rows))
	}
}

// unwritableStore fails every write at the database, after the existing
// records have already been deleted inside the transaction.
type unwritableStore struct {
	*storage.Store
}

func (s unwritableStore) Replace(ctx context.Context, records ...core.Record) error {
	return s.Store.Replace(ctx, append(records, &core.Performer{})...)
}

func TestRestoreReplaceFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := Restore(ctx, s, Sample(), false); err != nil {
		t.Fatalf("restore sample: %v", err)
	}

	if _, err := Restore(ctx, unwritableStore{s}, Sample(), true); err == nil {
		t.Fatal("expected restore to fail")
	}
	rows, _ := s.ListEvents(ctx, core.EventQuery{})
	if len(rows) != 27 {
		t.Errorf("got %d events after a failed replace, want 27", len(rows))
	}
	performers, _ := s.ListPerformers(ctx)
	if len(performers) == 0 {
		t.Error("performers lost after a failed replace")
	}
}

func TestRestoreNewerVersion(t *testing.T) {
	_, err := Restore(context.Background(), openStore(t), &Dataset{Version: Version + 1}, false)
	if !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"YML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatFromPath("backup.JSON") != FormatJSON || FormatFromPath("backup.yaml") != FormatYAML {
		t.Error("unexpected format from path")
	}
}

func TestEncodeOmitsMissingDate(t *testing.T) {
	ds := &Dataset{Version: Version, Events: []Event{{Performer: Performer{Name: "Phish", Genre: "Rock"}}}}
	var buf bytes.Buffer
	if err := Encode(&buf, ds, FormatYAML); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(buf.String(), "date") {
		t.Errorf("unexpected date key in:\n%s", buf.String())
	}
}
