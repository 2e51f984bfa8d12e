package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"schedule-bot/internal/model"
	"schedule-bot/internal/repository"
)

// Timers further out than a week are not worth keeping alive in one
// process lifetime; the resync job rearms them when their week comes.
const maxReminderLead = 7 * 24 * time.Hour

const reminderTitle = "Напоминание о паре"

// Notifier delivers a reminder to the chat that owns the entry. A failed
// delivery is not fatal, the schedule stays usable without notifications.
type Notifier interface {
	Notify(chatID int64, title, body string) error
}

// ReminderScheduler owns the set of pending one-shot reminder timers.
// Nobody else arms or cancels timers; every mutation of the schedule goes
// through RescheduleAll, which drops the whole set and rebuilds it from
// the store.
type ReminderScheduler struct {
	entryRepo *repository.EntryRepository
	userRepo  *repository.UserRepository
	now       func() time.Time

	mu       sync.Mutex
	notifier Notifier
	timers   map[string]*time.Timer
}

func NewReminderScheduler(entryRepo *repository.EntryRepository, userRepo *repository.UserRepository) *ReminderScheduler {
	return &ReminderScheduler{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
	}
}

// SetNotifier binds the delivery sink. Until one is set, fired reminders
// are dropped silently.
func (s *ReminderScheduler) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// RescheduleAll cancels every pending timer and rearms from the store:
// one timer per entry whose reminder instant lies strictly between now
// and now+7 days.
func (s *ReminderScheduler) RescheduleAll(ctx context.Context) error {
	entries, err := s.entryRepo.ListAll(ctx)
	if err != nil {
		return &StorageError{Op: "list", Err: err}
	}

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return &StorageError{Op: "list users", Err: err}
	}
	chats := make(map[uint]int64, len(users))
	for _, u := range users {
		chats[u.ID] = u.TelegramID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stopping an already-fired timer is a no-op, which keeps this pass
	// idempotent even when it races a firing callback.
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	now := s.now()
	armed := 0
	for _, entry := range entries {
		chatID, ok := chats[entry.UserID]
		if !ok {
			continue
		}

		remindAt := NextOccurrence(entry.Day, entry.StartMinutes(), now).
			Add(-time.Duration(entry.RemindMinutes) * time.Minute)
		delay := remindAt.Sub(now)
		if delay <= 0 || delay >= maxReminderLead {
			continue
		}

		entry := entry
		s.timers[entry.ID] = time.AfterFunc(delay, func() {
			s.fire(entry, chatID)
		})
		armed++
	}

	log.Printf("[info] reminders rearmed: %d of %d entries", armed, len(entries))
	return nil
}

// Pending returns the IDs of currently armed timers.
func (s *ReminderScheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	return ids
}

// Stop cancels every pending timer without rearming.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *ReminderScheduler) fire(entry model.ScheduleEntry, chatID int64) {
	s.mu.Lock()
	notifier := s.notifier
	delete(s.timers, entry.ID)
	s.mu.Unlock()

	if notifier != nil {
		body := fmt.Sprintf("%s (%s %s) в аудитории %s", entry.Course, model.DayName(entry.Day), entry.StartTime, entry.Room)
		if err := notifier.Notify(chatID, reminderTitle, body); err != nil {
			// Missed notification is not fatal, the schedule itself is intact.
			log.Printf("reminder notify entry=%s: %v", entry.ID, err)
		}
	}

	// Rearm everything so next week's occurrence of this entry gets a timer.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.RescheduleAll(ctx); err != nil {
		log.Printf("reschedule after fire: %v", err)
	}
}
