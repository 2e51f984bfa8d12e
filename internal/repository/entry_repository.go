package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"schedule-bot/internal/model"
)

// EntryRepository handles CRUD for schedule entries. Ordering is left to
// the view layer, the store hands entries back as-is.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Put inserts or replaces an entry by its ID.
func (r *EntryRepository) Put(ctx context.Context, entry *model.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// ListByUser returns every entry of one user's schedule.
func (r *EntryRepository) ListByUser(ctx context.Context, userID uint) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// ListAll returns every entry across all users (reminder rearm input).
func (r *EntryRepository) ListAll(ctx context.Context) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) FindByID(ctx context.Context, userID uint, id string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes an entry if present. Deleting an unknown ID is a no-op.
func (r *EntryRepository) Delete(ctx context.Context, userID uint, id string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.ScheduleEntry{}).Error; err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear removes every entry of one user's schedule.
func (r *EntryRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&model.ScheduleEntry{}).Error; err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}
