package calendar

import (
	"time"

	"dashcal/internal/model"
)

// Slot is a drop target or click target on the grid: a whole day (month
// view) or one hour of a day (week and day views).
type Slot struct {
	Day   time.Time `json:"day"`
	Hour  int       `json:"hour"`
	Timed bool      `json:"timed"`
}

// DaySlot is a month-view cell.
func DaySlot(day time.Time) Slot {
	return Slot{Day: StartOfDay(day)}
}

// HourSlot is a week/day-view cell.
func HourSlot(day time.Time, hour int) Slot {
	return Slot{Day: StartOfDay(day), Hour: hour, Timed: true}
}

// Move is the reschedule request emitted for a completed drag.
type Move struct {
	EventID string    `json:"eventId"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Reschedule computes where ev lands when dropped on target. Timed targets
// keep the original minute within the hour; day targets keep the original
// time of day, both read in the target day's zone. The duration, in whole
// minutes, is always preserved.
func Reschedule(ev model.Event, target Slot) Move {
	duration := DurationMinutes(ev.Start, ev.End)

	y, m, d := target.Day.Date()
	loc := target.Day.Location()
	orig := ev.Start.In(loc)

	var start time.Time
	if target.Timed {
		start = time.Date(y, m, d, target.Hour, orig.Minute(), 0, 0, loc)
	} else {
		start = time.Date(y, m, d, orig.Hour(), orig.Minute(), 0, 0, loc)
	}

	return Move{
		EventID: ev.ID,
		Start:   start,
		End:     start.Add(time.Duration(duration) * time.Minute),
	}
}

// DragState tracks a single drag gesture. The zero value is idle.
type DragState struct {
	dragged *model.Event
	over    *Slot
}

// Begin enters the dragging state for ev and clears any previous drop
// highlight.
func (d *DragState) Begin(ev model.Event) {
	d.dragged = &ev
	d.over = nil
}

// Over records the cell currently under the pointer.
func (d *DragState) Over(slot Slot) {
	if d.dragged == nil {
		return
	}
	d.over = &slot
}

// Dragging reports whether a drag is in progress.
func (d *DragState) Dragging() bool {
	return d.dragged != nil
}

// Dragged returns the event being dragged.
func (d *DragState) Dragged() (model.Event, bool) {
	if d.dragged == nil {
		return model.Event{}, false
	}
	return *d.dragged, true
}

// Target returns the highlighted drop cell, if any.
func (d *DragState) Target() (Slot, bool) {
	if d.over == nil {
		return Slot{}, false
	}
	return *d.over, true
}

// Cancel abandons the drag.
func (d *DragState) Cancel() {
	d.dragged = nil
	d.over = nil
}

// Drop finishes the drag on target and sends the move to mut. Dropping
// while idle is a no-op and reports false. The state is cleared whether or
// not the update succeeds; failures are returned, not retried.
func (d *DragState) Drop(target Slot, mut Mutator) (Move, bool, error) {
	if d.dragged == nil {
		return Move{}, false, nil
	}
	ev := *d.dragged
	d.Cancel()

	mv := Reschedule(ev, target)
	_, err := mut.UpdateEvent(mv.EventID, model.TimePatch(mv.Start, mv.End))
	return mv, true, err
}
