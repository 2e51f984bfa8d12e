package service

import (
	"sort"
	"time"

	"schedule-bot/internal/model"
)

// ViewMode selects how much of the schedule a view shows.
type ViewMode string

const (
	ModeDaily  ViewMode = "daily"
	ModeWeekly ViewMode = "weekly"
)

// Project filters the working set by mode (daily keeps only today's weekday)
// and sorts it by (day, start time). The input slice is left untouched.
func Project(entries []model.ScheduleEntry, mode ViewMode, now time.Time) []model.ScheduleEntry {
	today := int(now.Weekday())

	view := make([]model.ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if mode == ModeDaily && entry.Day != today {
			continue
		}
		view = append(view, entry)
	}

	sort.SliceStable(view, func(i, j int) bool {
		if view[i].Day != view[j].Day {
			return view[i].Day < view[j].Day
		}
		return view[i].StartMinutes() < view[j].StartMinutes()
	})

	return view
}
