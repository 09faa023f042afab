package core

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports user input that was rejected before reaching storage.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	locationPattern = regexp.MustCompile(`^([A-Z.][^,]*), ([A-Z]{2})$`)
)

// NormalizePerformer trims name and genre and requires both.
func NormalizePerformer(name, genre string) (Performer, error) {
	name = strings.TrimSpace(name)
	genre = NormalizeGenre(genre)
	if name == "" || genre == "" {
		return Performer{}, &ValidationError{Kind: KindPerformer, Message: "Invalid name & genre"}
	}
	return Performer{Name: name, Genre: genre}, nil
}

// NormalizeGenre trims a genre. Genres keep the casing the user typed.
func NormalizeGenre(genre string) string {
	return strings.TrimSpace(genre)
}

// NormalizeVenue trims the name and normalizes the location.
func NormalizeVenue(name, location string) (Venue, error) {
	name = strings.TrimSpace(name)
	loc, err := NormalizeLocation(location)
	if name == "" || err != nil {
		return Venue{}, &ValidationError{Kind: KindVenue, Message: "Invalid name & location"}
	}
	return Venue{Name: name, Location: loc}, nil
}

// NormalizeLocation checks the "<City>, <ST>" format and title-cases the city.
// "CHICAGO, IL" becomes "Chicago, IL"; "chicago, il" is rejected.
func NormalizeLocation(location string) (string, error) {
	m := locationPattern.FindStringSubmatch(strings.TrimSpace(location))
	if m == nil {
		return "", &ValidationError{Kind: KindVenue, Message: "Invalid location: use \"City, ST\""}
	}
	// Casers carry state, so one per call.
	return cases.Title(language.Und).String(m[1]) + ", " + m[2], nil
}

// NormalizeDate trims the input. Empty input means unscheduled and yields nil.
// Only the YYYY-MM-DD shape is checked, not calendar validity.
func NormalizeDate(date string) (*string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}
	if !datePattern.MatchString(date) {
		return nil, &ValidationError{Kind: KindEvent, Message: "Invalid date format: use YYYY-MM-DD"}
	}
	return &date, nil
}
