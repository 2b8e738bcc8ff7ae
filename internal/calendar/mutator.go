package calendar

import "dashcal/internal/model"

// Mutator receives the change requests produced by the engine. The engine
// never modifies event collections itself; the owner of the events applies
// creates, replaces by ID and deletes.
type Mutator interface {
	CreateEvent(ev model.Event) (model.Event, error)
	UpdateEvent(id string, patch model.EventPatch) (model.Event, error)
	DeleteEvent(id string) error
}
