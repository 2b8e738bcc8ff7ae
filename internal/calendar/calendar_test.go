package calendar

import (
	"errors"
	"time"

	"dashcal/internal/model"
)

// at builds a local-time-free timestamp for tests.
func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func event(id string, start, end time.Time) model.Event {
	return model.Event{ID: id, Title: "Event " + id, Start: start, End: end, Color: model.DefaultColor}
}

type updateCall struct {
	id    string
	patch model.EventPatch
}

// recordingMutator captures every change request.
type recordingMutator struct {
	created []model.Event
	updated []updateCall
	deleted []string
	err     error
}

func (r *recordingMutator) CreateEvent(ev model.Event) (model.Event, error) {
	if r.err != nil {
		return model.Event{}, r.err
	}
	r.created = append(r.created, ev)
	ev.ID = "new"
	return ev, nil
}

func (r *recordingMutator) UpdateEvent(id string, p model.EventPatch) (model.Event, error) {
	r.updated = append(r.updated, updateCall{id: id, patch: p})
	if r.err != nil {
		return model.Event{}, r.err
	}
	return p.Apply(model.Event{ID: id}), nil
}

func (r *recordingMutator) DeleteEvent(id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

var errStore = errors.New("store unavailable")
