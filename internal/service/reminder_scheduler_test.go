package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"schedule-bot/internal/model"
	"schedule-bot/internal/repository"
)

type captureNotifier struct {
	mu     sync.Mutex
	chatID int64
	bodies []string
}

func (c *captureNotifier) Notify(chatID int64, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatID = chatID
	c.bodies = append(c.bodies, body)
	return nil
}

func newSchedulerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestScheduler(t *testing.T) (*ReminderScheduler, *repository.EntryRepository, *captureNotifier) {
	t.Helper()
	db := newSchedulerTestDB(t)
	if err := db.Create(&model.User{TelegramID: 42}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	entryRepo := repository.NewEntryRepository(db)
	s := NewReminderScheduler(entryRepo, repository.NewUserRepository(db))
	s.now = func() time.Time { return wednesdayNoon }
	t.Cleanup(s.Stop)

	notifier := &captureNotifier{}
	s.SetNotifier(notifier)
	return s, entryRepo, notifier
}

func putEntry(t *testing.T, repo *repository.EntryRepository, id string, day int, start string, remind int) {
	t.Helper()
	err := repo.Put(context.Background(), &model.ScheduleEntry{
		ID:            id,
		UserID:        1,
		Course:        "Алгоритмы",
		Room:          "204",
		Day:           day,
		StartTime:     start,
		EndTime:       "23:59",
		RemindMinutes: remind,
	})
	if err != nil {
		t.Fatalf("put %s: %v", id, err)
	}
}

func TestRescheduleAllArmsOnlyInsideWindow(t *testing.T) {
	s, repo, _ := newTestScheduler(t)
	ctx := context.Background()

	// wednesdayNoon is Wednesday 12:00.
	putEntry(t, repo, "ahead", 3, "12:30", 10)    // remindAt 12:20, armed
	putEntry(t, repo, "too-late", 3, "12:05", 10) // remindAt 11:55 <= now, skipped
	putEntry(t, repo, "boundary", 3, "12:00", 0)  // rolls a week, delay == 7d, skipped
	putEntry(t, repo, "next-week", 3, "11:00", 5) // next Wednesday 10:55, armed

	if err := s.RescheduleAll(ctx); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	pending := s.Pending()
	if len(pending) != 2 {
		t.Fatalf("armed %v, want exactly ahead and next-week", pending)
	}
	got := map[string]bool{}
	for _, id := range pending {
		got[id] = true
	}
	if !got["ahead"] || !got["next-week"] {
		t.Errorf("armed %v, want ahead and next-week", pending)
	}
}

func TestRescheduleAllIsIdempotent(t *testing.T) {
	s, repo, _ := newTestScheduler(t)
	ctx := context.Background()

	putEntry(t, repo, "ahead", 3, "12:30", 10)

	for i := 0; i < 3; i++ {
		if err := s.RescheduleAll(ctx); err != nil {
			t.Fatalf("reschedule #%d: %v", i, err)
		}
	}
	if pending := s.Pending(); len(pending) != 1 {
		t.Errorf("repeated rescheduling armed %d timers, want 1", len(pending))
	}
}

func TestRescheduleAllDropsDeletedEntries(t *testing.T) {
	s, repo, _ := newTestScheduler(t)
	ctx := context.Background()

	putEntry(t, repo, "ahead", 3, "12:30", 10)
	if err := s.RescheduleAll(ctx); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if len(s.Pending()) != 1 {
		t.Fatal("expected one armed timer before delete")
	}

	if err := repo.Delete(ctx, 1, "ahead"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.RescheduleAll(ctx); err != nil {
		t.Fatalf("reschedule after delete: %v", err)
	}
	if pending := s.Pending(); len(pending) != 0 {
		t.Errorf("deleted entry still armed: %v", pending)
	}
}

func TestFireNotifiesAndRearms(t *testing.T) {
	s, repo, notifier := newTestScheduler(t)

	putEntry(t, repo, "ahead", 3, "12:30", 10)

	entry, err := repo.FindByID(context.Background(), 1, "ahead")
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	s.fire(*entry, 42)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.bodies) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.bodies))
	}
	if notifier.chatID != 42 {
		t.Errorf("notified chat %d, want 42", notifier.chatID)
	}
	want := "Алгоритмы (Среда 12:30) в аудитории 204"
	if notifier.bodies[0] != want {
		t.Errorf("body = %q, want %q", notifier.bodies[0], want)
	}

	// Firing reruns the full policy, so the entry is armed again for the
	// following occurrence.
	if pending := s.Pending(); len(pending) != 1 {
		t.Errorf("after fire %d timers armed, want 1", len(pending))
	}
}

func TestStopCancelsEverything(t *testing.T) {
	s, repo, _ := newTestScheduler(t)

	putEntry(t, repo, "ahead", 3, "12:30", 10)
	if err := s.RescheduleAll(context.Background()); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	s.Stop()
	if pending := s.Pending(); len(pending) != 0 {
		t.Errorf("Stop left %v armed", pending)
	}
}
