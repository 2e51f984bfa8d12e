package service

import (
	"testing"
	"time"
)

// 2026-01-07 is a Wednesday.
var wednesdayNoon = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func TestNextOccurrenceTodayStillAhead(t *testing.T) {
	// Session today, one minute in the future.
	got := NextOccurrence(3, 12*60+1, wednesdayNoon)
	want := time.Date(2026, 1, 7, 12, 1, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrenceTodayAlreadyPassed(t *testing.T) {
	// Session today, one minute in the past: rolls to next week.
	got := NextOccurrence(3, 11*60+59, wednesdayNoon)
	want := time.Date(2026, 1, 14, 11, 59, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrenceExactMinuteRolls(t *testing.T) {
	// Starting this exact instant counts as already started.
	got := NextOccurrence(3, 12*60, wednesdayNoon)
	want := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrenceLaterThisWeek(t *testing.T) {
	// Friday session seen from Wednesday.
	got := NextOccurrence(5, 9*60, wednesdayNoon)
	want := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrenceEarlierWeekdayWraps(t *testing.T) {
	// Monday session seen from Wednesday lands on next week's Monday.
	got := NextOccurrence(1, 9*60, wednesdayNoon)
	want := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrenceNeverPast(t *testing.T) {
	for day := 0; day < 7; day++ {
		for _, minutes := range []int{0, 11*60 + 59, 12 * 60, 12*60 + 1, 23*60 + 59} {
			got := NextOccurrence(day, minutes, wednesdayNoon)
			if !got.After(wednesdayNoon) {
				t.Errorf("NextOccurrence(%d, %d) = %v, not after now %v", day, minutes, got, wednesdayNoon)
			}
			if got.Sub(wednesdayNoon) > 7*24*time.Hour {
				t.Errorf("NextOccurrence(%d, %d) = %v, more than a week out", day, minutes, got)
			}
		}
	}
}
