package service

import "time"

// NextOccurrence returns the next future start of a weekly session held on
// the given weekday (0 = Sunday) at startMinutes past midnight. If today's
// session has already started or passed, the same weekday next week is
// returned, so the result is always strictly in the future.
func NextOccurrence(day, startMinutes int, now time.Time) time.Time {
	delta := (day - int(now.Weekday()) + 7) % 7

	candidate := time.Date(
		now.Year(), now.Month(), now.Day(),
		startMinutes/60, startMinutes%60, 0, 0,
		now.Location(),
	).AddDate(0, 0, delta)

	if delta == 0 && !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
