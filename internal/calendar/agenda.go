package calendar

import (
	"sort"
	"time"

	"dashcal/internal/model"
)

// DayKeyLayout formats agenda bucket keys; lexical order is date order.
const DayKeyLayout = "2006-01-02"

// AgendaDay is one bucket of the agenda view.
type AgendaDay struct {
	Key    string        `json:"key"`
	Day    time.Time     `json:"day"`
	Events []model.Event `json:"events"`
}

// GroupByDay buckets events by the calendar date of their start in loc,
// days ascending and events within a day ascending by start. Bucketed
// events are converted to loc so every key agrees with its events.
func GroupByDay(events []model.Event, loc *time.Location) []AgendaDay {
	if loc == nil {
		loc = time.Local
	}
	sorted := make([]model.Event, len(events))
	for i, ev := range events {
		ev.Start = ev.Start.In(loc)
		ev.End = ev.End.In(loc)
		sorted[i] = ev
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	groups := make([]AgendaDay, 0)
	for _, ev := range sorted {
		key := ev.Start.Format(DayKeyLayout)
		if n := len(groups); n > 0 && groups[n-1].Key == key {
			groups[n-1].Events = append(groups[n-1].Events, ev)
			continue
		}
		groups = append(groups, AgendaDay{
			Key:    key,
			Day:    StartOfDay(ev.Start),
			Events: []model.Event{ev},
		})
	}
	return groups
}
