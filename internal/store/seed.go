package store

import (
	"time"

	"dashcal/internal/model"
)

type seedEvent struct {
	title       string
	dayOffset   int // days from Monday of the current week
	hour, min   int
	minutes     int
	color       model.Color
	client      string
	clientID    string
	location    string
	description string
}

// Mock dashboard data: client sessions, finance reviews and calls.
var seedEvents = []seedEvent{
	{"Onboarding session", 0, 9, 30, 60, model.ColorBlue, "Acme Corp", "c-1001", "Room A", "Kick-off with the new account team"},
	{"Invoice review", 0, 14, 0, 45, model.ColorGreen, "", "", "Finance office", "Monthly outstanding invoices"},
	{"Strategy call", 1, 11, 0, 30, model.ColorPurple, "Globex", "c-1002", "Zoom", ""},
	{"Payment follow-up", 2, 10, 15, 30, model.ColorRed, "Initech", "c-1003", "", "Overdue order #4471"},
	{"Coaching session", 2, 16, 0, 90, model.ColorIndigo, "Umbrella Ltd", "c-1004", "Room B", ""},
	{"Quarterly planning", 3, 9, 0, 180, model.ColorYellow, "", "", "Board room", "Q-level targets and service pricing"},
	{"Client lunch", 4, 12, 30, 75, model.ColorPink, "Acme Corp", "c-1001", "Bistro", ""},
	{"Transaction audit", 7, 8, 0, 120, model.ColorGray, "", "", "", "Reconcile card transactions"},
	{"Follow-up session", 9, 15, 0, 60, model.ColorBlue, "Globex", "c-1002", "Room A", ""},
}

// Seed loads the mock dataset, anchored on the week containing now.
func (s *Store) Seed(now time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	n := 0
	for _, se := range seedEvents {
		day := monday.AddDate(0, 0, se.dayOffset)
		start := time.Date(day.Year(), day.Month(), day.Day(), se.hour, se.min, 0, 0, day.Location())
		_, err := s.CreateEvent(model.Event{
			Title:       se.title,
			Start:       start,
			End:         start.Add(time.Duration(se.minutes) * time.Minute),
			Color:       se.color,
			Description: se.description,
			Location:    se.location,
			ClientName:  se.client,
			ClientID:    se.clientID,
		})
		if err == nil {
			n++
		}
	}
	return n
}
