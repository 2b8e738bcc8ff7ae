package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"dashcal/internal/model"
)

const productID = "-//dashcal//calendar//EN"

// Export serializes events as a VCALENDAR. stamp is written as DTSTAMP on
// every VEVENT.
func Export(events []model.Event, stamp time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		ve.SetProperty(propColor, string(ev.Color.Resolve()))
		if ev.ClientName != "" {
			ve.SetProperty(propClient, ev.ClientName)
		}
		if ev.ClientID != "" {
			ve.SetProperty(propClientID, ev.ClientID)
		}
	}

	return []byte(cal.Serialize())
}
