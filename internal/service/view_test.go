package service

import (
	"testing"

	"schedule-bot/internal/model"
)

func sampleEntries() []model.ScheduleEntry {
	return []model.ScheduleEntry{
		{ID: "a", Course: "Алгоритмы", Day: 1, StartTime: "09:00", EndTime: "10:30"},
		{ID: "b", Course: "Физика", Day: 3, StartTime: "08:00", EndTime: "09:30"},
		{ID: "c", Course: "Матанализ", Day: 1, StartTime: "10:00", EndTime: "11:30"},
	}
}

func TestProjectWeeklySortOrder(t *testing.T) {
	view := Project(sampleEntries(), ModeWeekly, wednesdayNoon)

	want := []string{"a", "c", "b"} // Mon 09:00, Mon 10:00, Wed 08:00
	if len(view) != len(want) {
		t.Fatalf("weekly view has %d entries, want %d", len(view), len(want))
	}
	for i, id := range want {
		if view[i].ID != id {
			t.Errorf("view[%d].ID = %q, want %q", i, view[i].ID, id)
		}
	}
}

func TestProjectDailyFiltersToToday(t *testing.T) {
	// wednesdayNoon falls on a Wednesday, only the Day==3 entry survives.
	view := Project(sampleEntries(), ModeDaily, wednesdayNoon)

	if len(view) != 1 {
		t.Fatalf("daily view has %d entries, want 1", len(view))
	}
	if view[0].ID != "b" {
		t.Errorf("daily view kept %q, want %q", view[0].ID, "b")
	}
}

func TestProjectLeavesInputUntouched(t *testing.T) {
	entries := sampleEntries()
	Project(entries, ModeWeekly, wednesdayNoon)

	if entries[0].ID != "a" || entries[1].ID != "b" || entries[2].ID != "c" {
		t.Errorf("input slice was reordered: %v %v %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestProjectEmpty(t *testing.T) {
	if view := Project(nil, ModeWeekly, wednesdayNoon); len(view) != 0 {
		t.Errorf("projection of nil has %d entries", len(view))
	}
}
