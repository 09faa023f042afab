package archive

import "fmt"

// Sample returns the demo catalog loaded by the seed command.
func Sample() *Dataset {
	performers := []Performer{
		{Name: "The Beatles", Genre: "Rock"},
		{Name: "Miles Davis", Genre: "Jazz"},
		{Name: "Radiohead", Genre: "Alternative Rock"},
		{Name: "Billie Eilish", Genre: "Pop"},
		{Name: "Widespread Panic", Genre: "Southern Rock"},
		{Name: "Drive By Truckers", Genre: "Southern Rock"},
	}
	venues := []Venue{
		{Name: "Madison Square Garden", Location: "New York, NY"},
		{Name: "The Fillmore", Location: "San Francisco, CA"},
		{Name: "Red Rocks Amphitheatre", Location: "Morrison, CO"},
		{Name: "Royal Albert Hall", Location: "London, UK"},
	}

	schedule := []struct {
		performer, venue int
		dates            []string
	}{
		{0, 0, []string{"2024-06-15"}},
		{0, 3, []string{"2024-10-12", "2024-10-13", "2024-10-14", "2024-10-15", "2024-10-16"}},
		{1, 1, []string{"2024-07-20", "2024-07-21", "2024-07-22"}},
		{2, 2, []string{"2024-08-10", "2024-08-11", "2024-08-12", "2024-08-13"}},
		{3, 3, []string{"2024-09-05", "2024-09-06", "2024-09-07"}},
		{4, 3, []string{"2024-09-06", "2024-09-07", "2024-09-08", "2024-09-09"}},
	}
	for day := 1; day <= 7; day++ {
		schedule = append(schedule, struct {
			performer, venue int
			dates            []string
		}{5, 0, []string{fmt.Sprintf("2024-11-%02d", day)}})
	}

	ds := &Dataset{Version: Version, Performers: performers, Venues: venues}
	for _, s := range schedule {
		for _, d := range s.dates {
			date := d
			ds.Events = append(ds.Events, Event{
				Performer: performers[s.performer],
				Venue:     venues[s.venue],
				Date:      &date,
			})
		}
	}
	return ds
}
