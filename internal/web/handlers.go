package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dashcal/internal/calendar"
	"dashcal/internal/ics"
	"dashcal/internal/model"
)

const dateLayout = "2006-01-02"

// handleListEvents returns all events, or those intersecting the days
// between from and to (GET /api/events?from=2025-01-01&to=2025-01-31).
// Either bound may be omitted to leave that side open.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := s.parseBound(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := s.parseBound(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	events := eventsInLocation(s.store.List(), s.loc)
	filtered := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if from != nil && ev.End.Before(calendar.StartOfDay(*from)) {
			continue
		}
		if to != nil && calendar.EndOfDay(*to).Before(ev.Start) {
			continue
		}
		filtered = append(filtered, ev)
	}
	writeJSON(w, http.StatusOK, filtered)
}

// parseBound parses an optional date query parameter; empty means unbounded.
func (s *Server) parseBound(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := s.parseDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventsInLocation([]model.Event{ev}, s.loc)[0])
}

// handleCreateEvent saves the posted draft through an editor dialog.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft model.Event
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	draft.ID = ""
	draft.Source = ""
	if draft.Color == "" {
		draft.Color = model.DefaultColor
	}

	ed := calendar.NewEditor(s.store)
	ed.OpenEvent(draft)
	saved, err := ed.Save()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	current, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	var patch model.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ed := calendar.NewEditor(s.store)
	ed.OpenEvent(patch.Apply(current))
	saved, err := ed.Save()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	current, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	ed := calendar.NewEditor(s.store)
	ed.OpenEvent(current)
	if err := ed.Delete(); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dropRequest names the cell an event was dropped on. Hour is omitted for
// month-view drops.
type dropRequest struct {
	Day  string `json:"day"`
	Hour *int   `json:"hour,omitempty"`
}

// handleDropEvent completes a drag-reschedule (POST /api/events/{id}/drop).
func (s *Server) handleDropEvent(w http.ResponseWriter, r *http.Request) {
	current, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := s.parseDate(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}
	slot := calendar.DaySlot(day)
	if req.Hour != nil {
		if *req.Hour < 0 || *req.Hour > 23 {
			writeError(w, http.StatusBadRequest, "hour must be within 0-23")
			return
		}
		slot = calendar.HourSlot(day, *req.Hour)
	}

	ctrl := s.newController()
	ctrl.BeginDrag(eventsInLocation([]model.Event{current}, s.loc)[0])
	ctrl.DragOver(slot)
	mv, _, err := ctrl.Drop(slot)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// handleView renders one view pass:
// GET /api/view?mode=week&date=2025-01-20&nav=next
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Render(eventsInLocation(s.store.List(), s.loc)))
}

func (s *Server) handleAgenda(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, calendar.GroupByDay(s.store.List(), s.loc))
}

type paletteEntry struct {
	Key model.Color `json:"key"`
	Hex string      `json:"hex"`
}

func (s *Server) handlePalette(w http.ResponseWriter, _ *http.Request) {
	colors := model.Palette()
	out := make([]paletteEntry, len(colors))
	for i, c := range colors {
		out[i] = paletteEntry{Key: c, Hex: c.Hex()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	body := ics.Export(s.store.List(), s.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashcal.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handlePreview serves the last snapshot written by the capture job.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Capture.Output)
}

// controllerFromQuery applies mode, date and nav query parameters.
func (s *Server) controllerFromQuery(r *http.Request) (*calendar.Controller, error) {
	q := r.URL.Query()
	ctrl := s.newController()

	modeStr := q.Get("mode")
	if modeStr == "" {
		modeStr = s.cfg.DefaultView
	}
	mode, err := calendar.ParseViewMode(modeStr)
	if err != nil {
		return nil, err
	}
	ctrl.SetViewMode(mode)

	if d := q.Get("date"); d != "" {
		ref, err := s.parseDate(d)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", d)
		}
		ctrl.SetReference(ref)
	}

	switch q.Get("nav") {
	case "":
	case "prev":
		ctrl.Prev()
	case "next":
		ctrl.Next()
	case "today":
		ctrl.Today()
	default:
		return nil, errors.New("nav must be prev, next or today")
	}
	return ctrl, nil
}

func (s *Server) parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, v, s.loc)
}
