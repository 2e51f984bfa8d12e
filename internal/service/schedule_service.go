package service

import (
	"context"

	"github.com/google/uuid"

	"schedule-bot/internal/model"
	"schedule-bot/internal/repository"
)

// ScheduleService wraps schedule-entry business logic: validation, ID
// assignment and store access.
type ScheduleService struct {
	entryRepo *repository.EntryRepository
}

func NewScheduleService(entryRepo *repository.EntryRepository) *ScheduleService {
	return &ScheduleService{entryRepo: entryRepo}
}

// SaveEntry validates the form input and writes it to the store. A fresh
// UUID is assigned on create; edits keep their ID and overwrite in place.
func (s *ScheduleService) SaveEntry(ctx context.Context, user *model.User, in EntryInput) (*model.ScheduleEntry, error) {
	if err := ValidateEntry(in); err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	entry := &model.ScheduleEntry{
		ID:            id,
		UserID:        user.ID,
		Course:        in.Course,
		Lecturer:      in.Lecturer,
		Room:          in.Room,
		Day:           in.Day,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		RemindMinutes: in.RemindMinutes,
		Semester:      in.Semester,
	}

	if err := s.entryRepo.Put(ctx, entry); err != nil {
		return nil, &StorageError{Op: "put", Err: err}
	}
	return entry, nil
}

func (s *ScheduleService) List(ctx context.Context, user *model.User) ([]model.ScheduleEntry, error) {
	entries, err := s.entryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return entries, nil
}

func (s *ScheduleService) GetEntry(ctx context.Context, user *model.User, id string) (*model.ScheduleEntry, error) {
	return s.entryRepo.FindByID(ctx, user.ID, id)
}

// DeleteEntry removes one entry; unknown IDs are not an error.
func (s *ScheduleService) DeleteEntry(ctx context.Context, user *model.User, id string) error {
	if err := s.entryRepo.Delete(ctx, user.ID, id); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

// ClearEntries wipes the user's whole schedule.
func (s *ScheduleService) ClearEntries(ctx context.Context, user *model.User) error {
	if err := s.entryRepo.Clear(ctx, user.ID); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}
