package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "dashcal/internal/log"
	"dashcal/internal/model"
)

// Dashboard-specific properties carried through ICS round trips.
const (
	propColor    ical.ComponentProperty = "X-DASHCAL-COLOR"
	propClient   ical.ComponentProperty = "X-DASHCAL-CLIENT"
	propClientID ical.ComponentProperty = "X-DASHCAL-CLIENT-ID"
)

// defaultTimedLength is used for timed VEVENTs without DTEND.
const defaultTimedLength = time.Hour

// Parse converts an ICS payload into dashboard events in loc. Event IDs are
// the VEVENT UID prefixed with the source ID so feeds cannot collide.
//
// VEVENTs that are missing a UID or fail validation are logged and skipped.
// Recurrence rules are not expanded; only the first instance is imported.
func Parse(src Source, body []byte, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.ID, err)
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(src, ve, loc)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var out model.Event

	uid := propValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return out, errors.New("missing UID")
	}
	out.ID = src.ID + ":" + uid
	out.Source = src.ID

	out.Title = propValue(ve, ical.ComponentPropertySummary)
	out.Description = propValue(ve, ical.ComponentPropertyDescription)
	out.Location = propValue(ve, ical.ComponentPropertyLocation)
	out.Color = model.ParseColor(propValue(ve, propColor))
	out.ClientName = propValue(ve, propClient)
	out.ClientID = propValue(ve, propClientID)

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("uid %s: DTSTART: %w", uid, err)
	}
	end, endErr := ve.GetEndAt()

	if isAllDay(ve) {
		// All-day: [date 00:00, end date 00:00) on the wall calendar.
		y, m, d := start.Date()
		out.Start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		if endErr == nil {
			ey, em, ed := end.Date()
			out.End = time.Date(ey, em, ed, 0, 0, 0, 0, loc)
		} else {
			out.End = out.Start.AddDate(0, 0, 1)
		}
	} else {
		out.Start = start.In(loc)
		if endErr == nil {
			out.End = end.In(loc)
		} else {
			out.End = out.Start.Add(defaultTimedLength)
		}
	}

	if rr := propValue(ve, ical.ComponentPropertyRrule); rr != "" {
		appLog.Debug("ics recurrence not expanded; importing first instance", "uid", uid, "rrule", rr)
	}

	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("uid %s: %w", uid, err)
	}
	return out, nil
}

// isAllDay inspects DTSTART for VALUE=DATE or a date-only value.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}
