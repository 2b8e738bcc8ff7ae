package calendar

import (
	"fmt"
	"strings"
	"time"

	"dashcal/internal/model"
)

// ViewMode selects the grid shape.
type ViewMode string

const (
	ViewMonth  ViewMode = "month"
	ViewWeek   ViewMode = "week"
	ViewDay    ViewMode = "day"
	ViewAgenda ViewMode = "agenda"
)

// ParseViewMode parses a mode name, case-insensitively.
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewMonth, ViewWeek, ViewDay, ViewAgenda:
		return m, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// DayCell is one day of a month, week or day grid.
type DayCell struct {
	Day     time.Time     `json:"day"`
	InMonth bool          `json:"inMonth"`
	IsToday bool          `json:"isToday"`
	Events  []model.Event `json:"events"`
	Hours   []HourCell    `json:"hours,omitempty"`
}

// HourCell is one hour row of a day in the week or day view.
type HourCell struct {
	Hour  int   `json:"hour"`
	Boxes []Box `json:"boxes"`
}

// View is everything the presentation layer needs to draw one render pass.
type View struct {
	Mode      ViewMode    `json:"mode"`
	Reference time.Time   `json:"reference"`
	Title     string      `json:"title"`
	Days      []DayCell   `json:"days,omitempty"`
	Agenda    []AgendaDay `json:"agenda,omitempty"`
}

// Controller owns the navigable state of the calendar: the reference date,
// the view mode, the drag gesture and the edit dialog.
type Controller struct {
	// Now is the clock used by Today and today highlighting.
	Now func() time.Time

	Drag   DragState
	Editor *Editor

	mut       Mutator
	reference time.Time
	mode      ViewMode
}

// NewController returns a month view positioned on today. Confirmed edits
// and drags are sent to mut.
func NewController(mut Mutator) *Controller {
	c := &Controller{
		Now:    time.Now,
		Editor: NewEditor(mut),
		mut:    mut,
		mode:   ViewMonth,
	}
	c.reference = c.Now()
	return c
}

func (c *Controller) Reference() time.Time { return c.reference }
func (c *Controller) Mode() ViewMode       { return c.mode }

// SetReference jumps to t without changing the mode.
func (c *Controller) SetReference(t time.Time) {
	c.reference = t
}

// SetViewMode switches mode, keeping the reference date.
func (c *Controller) SetViewMode(mode ViewMode) {
	c.mode = mode
}

// Today moves the reference date to now.
func (c *Controller) Today() {
	c.reference = c.Now()
}

// Prev steps back one month, week or day. No-op in agenda mode.
func (c *Controller) Prev() {
	c.step(-1)
}

// Next steps forward one month, week or day. No-op in agenda mode.
func (c *Controller) Next() {
	c.step(1)
}

func (c *Controller) step(dir int) {
	switch c.mode {
	case ViewMonth:
		c.reference = addMonths(c.reference, dir)
	case ViewWeek:
		c.reference = c.reference.AddDate(0, 0, 7*dir)
	case ViewDay:
		c.reference = c.reference.AddDate(0, 0, dir)
	}
}

// addMonths moves t by n months, clamping the day to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return firstOfTarget.AddDate(0, 0, d-1)
}

// Title is the header caption for the current window.
func (c *Controller) Title() string {
	ref := c.reference
	switch c.mode {
	case ViewMonth:
		return ref.Format("January 2006")
	case ViewWeek:
		days := WeekGrid(ref)
		return days[0].Format("Jan 2") + " - " + days[6].Format("Jan 2, 2006")
	case ViewDay:
		return ref.Format("Monday, January 2, 2006")
	default:
		return "Agenda"
	}
}

// OpenSlot handles a click on an empty cell by opening a draft.
func (c *Controller) OpenSlot(slot Slot) {
	c.Editor.OpenDraft(slot)
}

// OpenEvent handles a click on an event by opening it for editing.
func (c *Controller) OpenEvent(ev model.Event) {
	c.Editor.OpenEvent(ev)
}

// BeginDrag starts dragging ev.
func (c *Controller) BeginDrag(ev model.Event) {
	c.Drag.Begin(ev)
}

// DragOver highlights slot as the current drop target.
func (c *Controller) DragOver(slot Slot) {
	c.Drag.Over(slot)
}

// Drop completes the current drag on slot.
func (c *Controller) Drop(slot Slot) (Move, bool, error) {
	return c.Drag.Drop(slot, c.mut)
}

// Render builds the grid for the current mode. events is read only; the
// result is computed fresh on every call.
func (c *Controller) Render(events []model.Event) View {
	v := View{
		Mode:      c.mode,
		Reference: c.reference,
		Title:     c.Title(),
	}
	now := c.Now().In(c.reference.Location())

	switch c.mode {
	case ViewMonth:
		_, month, _ := c.reference.Date()
		for _, day := range MonthGrid(c.reference) {
			v.Days = append(v.Days, DayCell{
				Day:     day,
				InMonth: day.Month() == month,
				IsToday: SameDay(day, now),
				Events:  EventsForDay(events, day),
			})
		}
	case ViewWeek:
		for _, day := range WeekGrid(c.reference) {
			v.Days = append(v.Days, timedCell(events, day, now))
		}
	case ViewDay:
		v.Days = []DayCell{timedCell(events, StartOfDay(c.reference), now)}
	case ViewAgenda:
		v.Agenda = GroupByDay(events, c.reference.Location())
	}
	return v
}

func timedCell(events []model.Event, day, now time.Time) DayCell {
	cell := DayCell{
		Day:     day,
		InMonth: true,
		IsToday: SameDay(day, now),
		Events:  EventsForDay(events, day),
	}
	for _, h := range HoursOfDay() {
		cell.Hours = append(cell.Hours, HourCell{
			Hour:  h,
			Boxes: LayoutHour(cell.Events, day, h),
		})
	}
	return cell
}
