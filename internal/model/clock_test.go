package model

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:05", 545, false},
		{"23:59", 1439, false},
		{" 10:30 ", 630, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(545); got != "09:05" {
		t.Errorf("FormatClock(545) = %q, want %q", got, "09:05")
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q, want %q", got, "00:00")
	}
}

func TestDayName(t *testing.T) {
	if got := DayName(0); got != "Воскресенье" {
		t.Errorf("DayName(0) = %q", got)
	}
	if got := DayName(6); got != "Суббота" {
		t.Errorf("DayName(6) = %q", got)
	}
	if got := DayName(7); got != "?" {
		t.Errorf("DayName(7) = %q, want ?", got)
	}
}
