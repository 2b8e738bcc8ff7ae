package calendar

import (
	"math"
	"time"

	"dashcal/internal/model"
)

const minutesPerHour = 60

// Box is the geometry of one event inside one hour cell of the week or day
// view, expressed as percentages of the cell height.
//
// Concurrent events are not packed into side-by-side lanes: every box spans
// the full cell width and overlapping boxes stack in render order.
type Box struct {
	Event         model.Event `json:"event"`
	Hour          int         `json:"hour"`
	TopPercent    float64     `json:"topPercent"`
	HeightPercent float64     `json:"heightPercent"`
}

// LayoutInHour computes the box for ev inside the hour cell (day, hour).
// The second result is false when no part of the event is visible in the
// cell, including zero-length and inverted events.
func LayoutInHour(ev model.Event, day time.Time, hour int) (Box, bool) {
	hourStart := float64(hour * minutesPerHour)
	hourEnd := hourStart + minutesPerHour

	evStart := wallMinutes(ev.Start, day)
	evEnd := wallMinutes(ev.End, day)

	visible := math.Min(evEnd, hourEnd) - math.Max(evStart, hourStart)
	if visible <= 0 {
		return Box{}, false
	}

	top := math.Max(0, evStart-hourStart)
	return Box{
		Event:         ev,
		Hour:          hour,
		TopPercent:    top / minutesPerHour * 100,
		HeightPercent: visible / minutesPerHour * 100,
	}, true
}

// LayoutHour bins events into the hour cell and returns one box per visible
// event, in input order.
func LayoutHour(events []model.Event, day time.Time, hour int) []Box {
	boxes := make([]Box, 0)
	for _, ev := range EventsForHour(events, day, hour) {
		if b, ok := LayoutInHour(ev, day, hour); ok {
			boxes = append(boxes, b)
		}
	}
	return boxes
}

// wallMinutes returns the wall-clock minutes from midnight of day to t.
// Values are negative for earlier days and exceed 1440 for later ones, so
// events crossing midnight clip against the cell like any other event.
func wallMinutes(t, day time.Time) float64 {
	t = t.In(day.Location())
	days := civilDays(t) - civilDays(day)
	mins := float64(days*24*minutesPerHour + t.Hour()*minutesPerHour + t.Minute())
	return mins + float64(t.Second())/60 + float64(t.Nanosecond())/float64(time.Minute)
}

// civilDays counts calendar days since the Unix epoch for t's wall date,
// ignoring DST transitions.
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
