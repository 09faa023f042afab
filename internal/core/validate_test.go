package core

import (
	"errors"
	"testing"
)

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		wantErr  bool
	}{
		{name: "valid city, state", location: "Atlanta, GA", want: "Atlanta, GA"},
		{name: "city with space", location: "San Francisco, CA", want: "San Francisco, CA"},
		{name: "abbreviated city", location: "St. Louis, MO", want: "St. Louis, MO"},
		{name: "kept as typed", location: "Chicago, IL", want: "Chicago, IL"},
		{name: "upper case city is title-cased", location: "CHICAGO, IL", want: "Chicago, IL"},
		{name: "surrounding whitespace", location: "  New York, NY  ", want: "New York, NY"},
		{name: "lower case", location: "chicago, il", wantErr: true},
		{name: "mixed case state", location: "sAn FrAnCiScO, cA", wantErr: true},
		{name: "lower case abbreviated", location: "st. louis, mo", wantErr: true},
		{name: "missing comma", location: "Atlanta GA", wantErr: true},
		{name: "missing space after comma", location: "Atlanta,GA", wantErr: true},
		{name: "missing state", location: "Atlanta", wantErr: true},
		{name: "missing city", location: "GA", wantErr: true},
		{name: "full state name", location: "Atlanta, Georgia", wantErr: true},
		{name: "three letter state", location: "Atlanta, GAA", wantErr: true},
		{name: "empty", location: "", wantErr: true},
		{name: "only whitespace", location: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLocation(tt.location)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected invalid input error, got %v (value %q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeVenue(t *testing.T) {
	v, err := NormalizeVenue("  The Fillmore  ", "  San Francisco, CA  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "The Fillmore" || v.Location != "San Francisco, CA" {
		t.Errorf("unexpected venue %+v", v)
	}

	for _, in := range [][2]string{{"   ", "San Francisco, CA"}, {"The Fillmore", "   "}, {"   ", "   "}} {
		_, err := NormalizeVenue(in[0], in[1])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%q: expected validation error, got %v", in, err)
		}
		if verr.Message != "Invalid name & location" {
			t.Errorf("%q: unexpected message %q", in, verr.Message)
		}
	}
}

func TestNormalizePerformer(t *testing.T) {
	p, err := NormalizePerformer(" Phish ", " Rock ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Phish" || p.Genre != "Rock" {
		t.Errorf("expected trimmed values, got %+v", p)
	}

	for _, in := range [][2]string{{"", "Rock"}, {"Phish", " "}, {" ", ""}} {
		if _, err := NormalizePerformer(in[0], in[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: expected invalid input, got %v", in, err)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    *string
		wantErr bool
	}{
		{in: "2024-07-04", want: StringPtr("2024-07-04")},
		{in: " 2024-07-04 ", want: StringPtr("2024-07-04")},
		// shape only, no calendar check
		{in: "2024-13-45", want: StringPtr("2024-13-45")},
		{in: "", want: nil},
		{in: "   ", want: nil},
		{in: "2024/07/04", wantErr: true},
		{in: "24-07-04", wantErr: true},
		{in: "2024-7-4", wantErr: true},
		{in: "July 4th", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%q: expected invalid input, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
			continue
		}
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("%q: expected nil date, got %q", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("%q: expected %q, got %v", tt.in, *tt.want, got)
		}
	}
}
