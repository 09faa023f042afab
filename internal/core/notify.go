package core

import (
	"context"
	"fmt"
)

// Severity of a user-facing notification.
type Severity int

const (
	SeverityInformation Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "information"
	}
}

// Notifier is the single sink for user-facing outcomes.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifyFunc adapts a plain function to Notifier.
type NotifyFunc func(message string, severity Severity)

func (f NotifyFunc) Notify(message string, severity Severity) { f(message, severity) }

// Saver is the write half of Store.
type Saver interface {
	Save(ctx context.Context, records ...Record) error
}

// SaveAndNotify saves records and reports the outcome to n when n is non-nil.
// The error is returned either way so callers cannot lose it.
func SaveAndNotify(ctx context.Context, s Saver, n Notifier, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	err := s.Save(ctx, records...)
	if n != nil {
		if err != nil {
			n.Notify(fmt.Sprintf("Error saving object: %v", err), SeverityError)
		} else {
			n.Notify("Saved successfully!", SeverityInformation)
		}
	}
	return err
}
