package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"dashcal/internal/calendar"
	"dashcal/internal/model"
)

var _ calendar.Mutator = (*Store)(nil)

func newTestStore() *Store {
	s := New()
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func sample(title string, start time.Time, d time.Duration) model.Event {
	return model.Event{Title: title, Start: start, End: start.Add(d)}
}

func TestStoreCreate(t *testing.T) {
	s := newTestStore()
	start := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

	ev, err := s.CreateEvent(sample("Call", start, time.Hour))
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if ev.ID != "id-1" || ev.Color != model.DefaultColor {
		t.Errorf("CreateEvent() = %+v", ev)
	}

	if _, err := s.CreateEvent(sample("", start, time.Hour)); !errors.Is(err, model.ErrEmptyTitle) {
		t.Errorf("CreateEvent(blank title) error = %v", err)
	}
	if _, err := s.CreateEvent(sample("x", start, 0)); !errors.Is(err, model.ErrInvalidRange) {
		t.Errorf("CreateEvent(empty range) error = %v", err)
	}

	dup := sample("Dup", start, time.Hour)
	dup.ID = "id-1"
	if _, err := s.CreateEvent(dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("CreateEvent(duplicate) error = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", s.Len())
	}
}

func TestStoreUpdateDelete(t *testing.T) {
	s := newTestStore()
	start := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	ev, _ := s.CreateEvent(sample("Call", start, time.Hour))

	newStart := start.AddDate(0, 0, 2)
	got, err := s.UpdateEvent(ev.ID, model.TimePatch(newStart, newStart.Add(30*time.Minute)))
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if !got.Start.Equal(newStart) || got.Title != "Call" {
		t.Errorf("UpdateEvent() = %+v", got)
	}

	if _, err := s.UpdateEvent(ev.ID, model.TimePatch(newStart, newStart)); !errors.Is(err, model.ErrInvalidRange) {
		t.Errorf("UpdateEvent(invalid) error = %v", err)
	}
	if stored, _ := s.Get(ev.ID); !stored.Start.Equal(newStart) {
		t.Errorf("failed update modified the stored event: %+v", stored)
	}
	if _, err := s.UpdateEvent("missing", model.EventPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateEvent(missing) error = %v", err)
	}

	if err := s.DeleteEvent(ev.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, ok := s.Get(ev.ID); ok {
		t.Errorf("event still present after delete")
	}
	if err := s.DeleteEvent(ev.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteEvent(missing) error = %v", err)
	}
}

func TestStoreListIsCopy(t *testing.T) {
	s := newTestStore()
	base := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	s.CreateEvent(sample("late", base.Add(3*time.Hour), time.Hour))
	s.CreateEvent(sample("early", base, time.Hour))

	list := s.List()
	if list[0].Title != "early" || list[1].Title != "late" {
		t.Errorf("List() not sorted by start: %v, %v", list[0].Title, list[1].Title)
	}
	list[0].Title = "changed"
	if ev, _ := s.Get(list[0].ID); ev.Title != "early" {
		t.Errorf("List() exposed internal storage")
	}
}

func TestStoreReplaceSource(t *testing.T) {
	s := newTestStore()
	base := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	local, _ := s.CreateEvent(sample("local", base, time.Hour))

	n := s.ReplaceSource("feed", []model.Event{
		{ID: "feed:1", Title: "a", Start: base, End: base.Add(time.Hour)},
		{ID: "feed:2", Title: "b", Start: base, End: base},
	})
	if n != 1 || s.Len() != 2 {
		t.Fatalf("ReplaceSource() = %d, Len() = %d", n, s.Len())
	}

	n = s.ReplaceSource("feed", []model.Event{
		{ID: "feed:3", Title: "c", Start: base, End: base.Add(time.Hour)},
	})
	if n != 1 || s.Len() != 2 {
		t.Fatalf("second ReplaceSource() = %d, Len() = %d", n, s.Len())
	}
	if _, ok := s.Get("feed:1"); ok {
		t.Errorf("stale feed event kept")
	}
	if ev, ok := s.Get("feed:3"); !ok || ev.Source != "feed" {
		t.Errorf("imported event = %+v, %v", ev, ok)
	}
	if _, ok := s.Get(local.ID); !ok {
		t.Errorf("local event removed by feed replace")
	}
}

func TestStoreSeed(t *testing.T) {
	s := New()
	now := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	n := s.Seed(now)
	if n != len(seedEvents) || s.Len() != n {
		t.Fatalf("Seed() = %d, Len() = %d, expected %d", n, s.Len(), len(seedEvents))
	}
	first := s.List()[0]
	if first.Start.Weekday() != time.Monday || first.Start.Day() != 20 {
		t.Errorf("first seeded event = %v, expected Monday Jan 20", first.Start)
	}
}
