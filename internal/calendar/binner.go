package calendar

import (
	"sort"
	"time"

	"dashcal/internal/model"
)

// EventsForDay returns the events intersecting day, sorted by start time.
// The input slice is never reordered.
func EventsForDay(events []model.Event, day time.Time) []model.Event {
	out := intersecting(events, StartOfDay(day), EndOfDay(day))
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// EventsForHour returns the events intersecting the given hour of day, in
// input order.
func EventsForHour(events []model.Event, day time.Time, hour int) []model.Event {
	from, to := hourBounds(day, hour)
	return intersecting(events, from, to)
}

// intersecting applies the three-way cell test: the event starts inside the
// cell, ends inside it, or starts before and ends after it. The last clause
// catches multi-day events whose boundaries both fall outside the cell.
func intersecting(events []model.Event, from, to time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		startsIn := ContainsPoint(from, to, ev.Start)
		endsIn := ContainsPoint(from, to, ev.End)
		spans := ev.Start.Before(from) && ev.End.After(to)
		if startsIn || endsIn || spans {
			out = append(out, ev)
		}
	}
	return out
}
