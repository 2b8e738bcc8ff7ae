package calendar

import "time"

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] intersect.
// Intervals that only touch at a boundary count as intersecting.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}

// ContainsPoint reports whether point lies within [start, end], inclusive.
func ContainsPoint(start, end, point time.Time) bool {
	return !point.Before(start) && !point.After(end)
}

// DurationMinutes returns the whole minutes between start and end.
// Callers must ensure end is not before start.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
