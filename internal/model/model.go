package model

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptyTitle is returned when an event is saved without a title.
	ErrEmptyTitle = errors.New("event title is required")
	// ErrInvalidRange is returned when an event does not end strictly after it starts.
	ErrInvalidRange = errors.New("event end must be after start")
)

// Event is a titled, colored, timed record shown on the dashboard calendar.
//
// An empty ID marks a draft that has not been handed to the store yet.
// Start/End are serialized as RFC 3339 strings at the JSON boundary.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Color Color     `json:"color"`

	Description string `json:"description"`
	Location    string `json:"location"`
	ClientName  string `json:"clientName"`
	ClientID    string `json:"clientId,omitempty"`

	// Source is the ICS feed ID the event was imported from; empty for
	// events created locally.
	Source string `json:"source,omitempty"`
}

// IsDraft reports whether the event has not been persisted yet.
func (e Event) IsDraft() bool {
	return e.ID == ""
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Validate checks the invariants required before an event may be saved.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !e.End.After(e.Start) {
		return ErrInvalidRange
	}
	return nil
}

// EventPatch is a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Color       *Color     `json:"color,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	ClientName  *string    `json:"clientName,omitempty"`
	ClientID    *string    `json:"clientId,omitempty"`
}

// Apply returns a copy of ev with the patch applied.
func (p EventPatch) Apply(ev Event) Event {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.Color != nil {
		ev.Color = *p.Color
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	if p.ClientName != nil {
		ev.ClientName = *p.ClientName
	}
	if p.ClientID != nil {
		ev.ClientID = *p.ClientID
	}
	return ev
}

// FullPatch builds a patch that overwrites every editable field with the
// values of ev. Used when an edit dialog is saved.
func FullPatch(ev Event) EventPatch {
	return EventPatch{
		Title:       &ev.Title,
		Start:       &ev.Start,
		End:         &ev.End,
		Color:       &ev.Color,
		Description: &ev.Description,
		Location:    &ev.Location,
		ClientName:  &ev.ClientName,
		ClientID:    &ev.ClientID,
	}
}

// TimePatch builds a patch that only moves an event.
func TimePatch(start, end time.Time) EventPatch {
	return EventPatch{Start: &start, End: &end}
}
