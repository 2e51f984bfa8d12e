package model

import "time"

// ScheduleEntry represents one weekly recurring class session.
type ScheduleEntry struct {
	ID            string `gorm:"primaryKey"`
	UserID        uint   `gorm:"index"`
	Course        string
	Lecturer      string
	Room          string
	Day           int    `gorm:"index"` // 0 = Sunday .. 6 = Saturday
	StartTime     string // "HH:MM"
	EndTime       string // "HH:MM"
	RemindMinutes int
	Semester      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StartMinutes returns the session start as minutes since midnight.
// The value is validated before it reaches the store, so parse errors
// are treated as zero here.
func (e ScheduleEntry) StartMinutes() int {
	m, _ := ParseClock(e.StartTime)
	return m
}

// EndMinutes returns the session end as minutes since midnight.
func (e ScheduleEntry) EndMinutes() int {
	m, _ := ParseClock(e.EndTime)
	return m
}
