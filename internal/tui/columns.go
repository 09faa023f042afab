package tui

import "github.com/theakshaypant/concertdb/internal/core"

const (
	sortAscMark  = "↑"
	sortDescMark = "↓"
)

// SortableColumns tracks the sort direction shown on each sortable header of
// the events table. At most one column is sorted at a time.
type SortableColumns struct {
	columns    []core.SortColumn
	directions []core.Direction
}

func NewSortableColumns(columns ...core.SortColumn) SortableColumns {
	return SortableColumns{
		columns:    columns,
		directions: make([]core.Direction, len(columns)),
	}
}

// Set marks column as sorted in dir and every other column as unsorted.
func (s *SortableColumns) Set(sort core.EventSort) {
	for i, c := range s.columns {
		if c == sort.Column {
			s.directions[i] = sort.Direction
		} else {
			s.directions[i] = core.Unsorted
		}
	}
}

// Toggle advances the direction of the column at idx and resets the others.
// It returns the resulting sort.
func (s *SortableColumns) Toggle(idx int) core.EventSort {
	next := core.EventSort{Column: s.columns[idx], Direction: s.directions[idx].Next()}
	s.Set(next)
	return next
}

// Titles returns the header titles with the sort mark of the sorted column.
func (s SortableColumns) Titles() []string {
	titles := make([]string, len(s.columns))
	for i, c := range s.columns {
		switch s.directions[i] {
		case core.Ascending:
			titles[i] = c.String() + " " + sortAscMark
		case core.Descending:
			titles[i] = c.String() + " " + sortDescMark
		default:
			titles[i] = c.String()
		}
	}
	return titles
}

func (s SortableColumns) Len() int { return len(s.columns) }
