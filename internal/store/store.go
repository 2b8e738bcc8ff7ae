package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	appLog "dashcal/internal/log"
	"dashcal/internal/model"
)

var (
	ErrNotFound    = errors.New("event not found")
	ErrDuplicateID = errors.New("event id already exists")
)

// Store is the in-memory owner of the dashboard's events. It applies the
// change requests emitted by the calendar engine.
type Store struct {
	mu     sync.RWMutex
	events []model.Event
	newID  func() string
}

// New returns an empty store.
func New() *Store {
	return &Store{newID: uuid.NewString}
}

// List returns a copy of every event, ordered by start.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Get looks an event up by ID.
func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return model.Event{}, false
}

// CreateEvent validates ev, assigns an ID when it has none and appends it.
func (s *Store) CreateEvent(ev model.Event) (model.Event, error) {
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	ev.Color = ev.Color.Resolve()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = s.newID()
	} else if s.indexOf(ev.ID) >= 0 {
		return model.Event{}, fmt.Errorf("create %s: %w", ev.ID, ErrDuplicateID)
	}
	s.events = append(s.events, ev)

	appLog.Debug("event created", "id", ev.ID, "title", ev.Title, "start", ev.Start)
	return ev, nil
}

// UpdateEvent applies patch to the event with the given ID and replaces it,
// provided the result is still valid.
func (s *Store) UpdateEvent(id string, patch model.EventPatch) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	next := patch.Apply(s.events[i])
	if err := next.Validate(); err != nil {
		return model.Event{}, err
	}
	next.Color = next.Color.Resolve()
	s.events[i] = next

	appLog.Debug("event updated", "id", id, "start", next.Start, "end", next.End)
	return next, nil
}

// DeleteEvent removes the event with the given ID.
func (s *Store) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.events = append(s.events[:i:i], s.events[i+1:]...)

	appLog.Debug("event deleted", "id", id)
	return nil
}

// ReplaceSource swaps every event imported from source for events. Invalid
// events are dropped. It returns the number of events kept.
func (s *Store) ReplaceSource(source string, events []model.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.Event, 0, len(s.events)+len(events))
	for _, ev := range s.events {
		if ev.Source != source {
			kept = append(kept, ev)
		}
	}

	added := 0
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			appLog.Debug("skipping invalid imported event", "source", source, "id", ev.ID, "reason", err.Error())
			continue
		}
		ev.Source = source
		ev.Color = ev.Color.Resolve()
		if ev.ID == "" {
			ev.ID = s.newID()
		}
		kept = append(kept, ev)
		added++
	}
	s.events = kept
	return added
}

func (s *Store) indexOf(id string) int {
	for i, ev := range s.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}
