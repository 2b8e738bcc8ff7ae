package calendar

import "time"

// Weeks always start on Monday.
const weekStart = time.Monday

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthGrid returns every day visible in the month view for ref's month,
// padded back to Monday and forward to Sunday. The length is always a
// multiple of 7.
func MonthGrid(ref time.Time) []time.Time {
	y, m, _ := ref.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	from := StartOfWeek(first)
	to := StartOfWeek(last).AddDate(0, 0, 6)

	days := make([]time.Time, 0, 42)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekGrid returns the seven days, Monday through Sunday, of ref's week.
func WeekGrid(ref time.Time) []time.Time {
	from := StartOfWeek(ref)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = from.AddDate(0, 0, i)
	}
	return days
}

// HoursOfDay returns 0 through 23.
func HoursOfDay() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// hourBounds returns the first and last instant of the given hour on day.
func hourBounds(day time.Time, hour int) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, hour, 0, 0, 0, day.Location())
	end := time.Date(y, m, d, hour, 59, 59, int(time.Second-time.Nanosecond), day.Location())
	return start, end
}
