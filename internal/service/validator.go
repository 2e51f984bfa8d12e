package service

import (
	"github.com/go-playground/validator/v10"

	"schedule-bot/internal/model"
)

// EntryInput is the form payload for creating or updating one schedule entry.
// An empty ID means create, a non-empty ID overwrites the stored entry.
type EntryInput struct {
	ID            string
	Course        string `validate:"required"`
	Lecturer      string
	Room          string `validate:"required"`
	Day           int    `validate:"min=0,max=6"`
	StartTime     string `validate:"required"`
	EndTime       string `validate:"required"`
	RemindMinutes int    `validate:"min=0"`
	Semester      string
}

var validate = validator.New()

// ValidateEntry checks form input synchronously, before any I/O happens.
func ValidateEntry(in EntryInput) error {
	if err := validate.Struct(in); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{Reason: fieldReason(errs[0])}
		}
		return &ValidationError{Reason: err.Error()}
	}

	start, err := model.ParseClock(in.StartTime)
	if err != nil {
		return &ValidationError{Reason: "start time must be HH:MM"}
	}
	end, err := model.ParseClock(in.EndTime)
	if err != nil {
		return &ValidationError{Reason: "end time must be HH:MM"}
	}
	if end <= start {
		return &ValidationError{Reason: "end before start"}
	}

	return nil
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Field() {
	case "Course":
		return "course is required"
	case "Room":
		return "room is required"
	case "StartTime":
		return "start time is required"
	case "EndTime":
		return "end time is required"
	case "Day":
		return "day must be between 0 and 6"
	case "RemindMinutes":
		return "remind minutes must not be negative"
	default:
		return fe.Error()
	}
}
