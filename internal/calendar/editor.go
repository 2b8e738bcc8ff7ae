package calendar

import (
	"errors"
	"time"

	"dashcal/internal/model"
)

var (
	// ErrEditorClosed is returned when saving or deleting with no open dialog.
	ErrEditorClosed = errors.New("no event is being edited")
	// ErrNotPersisted is returned when deleting a draft.
	ErrNotPersisted = errors.New("draft event has not been created")
)

// Month-view clicks have no hour; drafts created from them default to this
// time of day.
const (
	draftDefaultHour = 9
	draftLength      = time.Hour
)

// Editor is the create/edit dialog state. It holds a working copy of the
// event and only talks to the Mutator on Save or Delete.
type Editor struct {
	mut   Mutator
	open  bool
	draft model.Event
}

// NewEditor returns a closed editor that sends confirmed changes to mut.
func NewEditor(mut Mutator) *Editor {
	return &Editor{mut: mut}
}

// IsOpen reports whether the dialog is showing.
func (e *Editor) IsOpen() bool {
	return e.open
}

// Draft returns the working copy.
func (e *Editor) Draft() model.Event {
	return e.draft
}

// OpenDraft starts creating an event from a click on an empty cell.
func (e *Editor) OpenDraft(slot Slot) {
	y, m, d := slot.Day.Date()
	hour := draftDefaultHour
	if slot.Timed {
		hour = slot.Hour
	}
	start := time.Date(y, m, d, hour, 0, 0, 0, slot.Day.Location())

	e.draft = model.Event{
		Start: start,
		End:   start.Add(draftLength),
		Color: model.DefaultColor,
	}
	e.open = true
}

// OpenEvent starts editing a copy of an existing event.
func (e *Editor) OpenEvent(ev model.Event) {
	e.draft = ev
	e.open = true
}

// Edit applies fn to the working copy. Ignored while closed.
func (e *Editor) Edit(fn func(*model.Event)) {
	if !e.open {
		return
	}
	fn(&e.draft)
}

// Save validates the working copy and hands it to the mutator: drafts are
// created, existing events updated. On any error the dialog stays open and
// the working copy is kept.
func (e *Editor) Save() (model.Event, error) {
	if !e.open {
		return model.Event{}, ErrEditorClosed
	}
	if err := e.draft.Validate(); err != nil {
		return model.Event{}, err
	}

	var (
		saved model.Event
		err   error
	)
	if e.draft.IsDraft() {
		saved, err = e.mut.CreateEvent(e.draft)
	} else {
		saved, err = e.mut.UpdateEvent(e.draft.ID, model.FullPatch(e.draft))
	}
	if err != nil {
		return model.Event{}, err
	}

	e.Cancel()
	return saved, nil
}

// Delete removes the event being edited and closes the dialog.
func (e *Editor) Delete() error {
	if !e.open {
		return ErrEditorClosed
	}
	if e.draft.IsDraft() {
		return ErrNotPersisted
	}
	if err := e.mut.DeleteEvent(e.draft.ID); err != nil {
		return err
	}
	e.Cancel()
	return nil
}

// Cancel closes the dialog and discards the working copy.
func (e *Editor) Cancel() {
	e.open = false
	e.draft = model.Event{}
}
