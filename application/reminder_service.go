package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

// ErrPastTime is returned by Create when the requested event time is not
// strictly in the future.
var ErrPastTime = errors.New("время события уже в прошлом")

// Scheduler is the timer-with-identity facility the service schedules
// notification jobs on.
type Scheduler interface {
	Schedule(jobID string, fireAt time.Time, fn func())
	ScheduleRecurring(jobID string, interval time.Duration, fn func())
	Cancel(jobID string)
}

// Notifier delivers a text message to a chat address. Best effort: a failed
// delivery is not retried.
type Notifier interface {
	Send(addr domain.ChatAddress, text string) error
}

// The two advance notices sent before every event. The 24h job always has
// an earlier fire time than the 1h job of the same reminder.
var notifyOffsets = []struct {
	kind   string
	offset time.Duration
	label  string
}{
	{"24h", 24 * time.Hour, "за 24 часа"},
	{"1h", time.Hour, "за 1 час"},
}

// notification carries everything a fire callback needs, fixed at
// registration time.
type notification struct {
	addr    domain.ChatAddress
	title   string
	eventDT time.Time
	label   string
}

// ReminderService owns the reminder lifecycle: it persists reminders,
// derives their notification jobs, rebuilds the jobs after a restart and
// prunes expired entries.
type ReminderService struct {
	store     domain.ReminderStore
	scheduler Scheduler
	clock     *domain.Clock
	notifier  Notifier
	retention time.Duration
}

func NewReminderService(store domain.ReminderStore, scheduler Scheduler, clock *domain.Clock, notifier Notifier, retention time.Duration) *ReminderService {
	return &ReminderService{
		store:     store,
		scheduler: scheduler,
		clock:     clock,
		notifier:  notifier,
		retention: retention,
	}
}

func (s *ReminderService) Retention() time.Duration { return s.retention }

// Create persists a new reminder and registers its notification jobs.
// Rejects event times that are not strictly after now.
func (s *ReminderService) Create(ctx context.Context, addr domain.ChatAddress, creatorID int64, title string, eventTime time.Time) (domain.Reminder, error) {
	now := s.clock.Now()
	if !eventTime.After(now) {
		return domain.Reminder{}, ErrPastTime
	}

	rem := domain.NewReminder(addr, creatorID, title, s.clock.Format(eventTime), s.clock.Format(now))

	doc, _ := s.store.Load(ctx)
	doc.Reminders = append(doc.Reminders, rem)
	if err := s.store.Save(ctx, doc); err != nil {
		log.Printf("сохранение напоминания %s: %v", rem.ID, err)
	}

	s.RegisterJobs(rem)
	return rem, nil
}

// RegisterJobs derives the two notification jobs of a reminder. An offset
// whose fire time has already passed gets its job canceled instead of
// scheduled; this covers rehydration of reminders whose earlier notice
// window elapsed while the process was down.
func (s *ReminderService) RegisterJobs(rem domain.Reminder) {
	eventDT, err := s.clock.Parse(rem.EventDT)
	if err != nil {
		return
	}

	for _, n := range notifyOffsets {
		jobID := rem.ID + "_" + n.kind
		fireAt := eventDT.Add(-n.offset)

		if !fireAt.After(s.clock.Now()) {
			s.scheduler.Cancel(jobID)
			continue
		}

		note := notification{
			addr:    rem.Address(),
			title:   rem.Title,
			eventDT: eventDT,
			label:   n.label,
		}
		s.scheduler.Schedule(jobID, fireAt, func() { s.deliver(note) })
	}
}

func (s *ReminderService) deliver(n notification) {
	text := fmt.Sprintf(
		"⏰ Напоминание (%s)\n<b>%s</b>\n📅 Событие: <b>%s</b>",
		n.label, n.title, s.clock.FormatHuman(n.eventDT),
	)
	if err := s.notifier.Send(n.addr, text); err != nil {
		log.Printf("отправка напоминания в чат %d: %v", n.addr.ChatID, err)
	}
}

// Rehydrate reconstructs all pending notification jobs from the store.
// Called once at startup; jobs themselves are never persisted. Stored
// timestamps are re-normalized and the corrected document written back.
func (s *ReminderService) Rehydrate(ctx context.Context) {
	doc, _ := s.store.Load(ctx)
	if len(doc.Reminders) == 0 {
		return
	}

	for i := range doc.Reminders {
		if t, err := s.clock.Parse(doc.Reminders[i].EventDT); err == nil {
			doc.Reminders[i].EventDT = s.clock.Format(t)
		}
		s.RegisterJobs(doc.Reminders[i])
	}

	if err := s.store.Save(ctx, doc); err != nil {
		log.Printf("сохранение после восстановления: %v", err)
	}
}

// StartCleanup registers the recurring expiry sweep.
func (s *ReminderService) StartCleanup(interval time.Duration) {
	s.scheduler.ScheduleRecurring("cleanup_expired", interval, func() {
		s.CleanupExpired(context.Background())
	})
}

// CleanupExpired removes reminders whose event time is older than the
// retention window, and ones with unparsable timestamps. Both derived jobs
// of every removed reminder are canceled; canceling an already-fired or
// never-scheduled job is a no-op.
func (s *ReminderService) CleanupExpired(ctx context.Context) {
	doc, _ := s.store.Load(ctx)
	if len(doc.Reminders) == 0 {
		return
	}

	cutoff := s.clock.Now().Add(-s.retention)
	keep := make([]domain.Reminder, 0, len(doc.Reminders))
	var removed []string

	for _, r := range doc.Reminders {
		t, err := s.clock.Parse(r.EventDT)
		if err != nil {
			removed = append(removed, r.ID)
			continue
		}
		if t.Before(cutoff) {
			removed = append(removed, r.ID)
			continue
		}
		r.EventDT = s.clock.Format(t)
		keep = append(keep, r)
	}

	if len(removed) == 0 {
		return
	}

	for _, id := range removed {
		if id == "" {
			continue
		}
		for _, n := range notifyOffsets {
			s.scheduler.Cancel(id + "_" + n.kind)
		}
	}

	doc.Reminders = keep
	if err := s.store.Save(ctx, doc); err != nil {
		log.Printf("сохранение после очистки: %v", err)
	}
}

// ListForChat returns the chat's reminders sorted ascending by event time.
// Timestamps are re-serialized into canonical form and corrections written
// back, self-healing legacy data. Unparsable entries are excluded; the next
// cleanup sweep removes them.
func (s *ReminderService) ListForChat(ctx context.Context, addr domain.ChatAddress) []domain.Reminder {
	doc, _ := s.store.Load(ctx)

	var items []domain.Reminder
	changed := false
	for _, r := range doc.Reminders {
		if r.ChatID != addr.ChatID || r.ThreadID != addr.ThreadID {
			continue
		}
		t, err := s.clock.Parse(r.EventDT)
		if err != nil {
			continue
		}
		if iso := s.clock.Format(t); iso != r.EventDT {
			r.EventDT = iso
			changed = true
		}
		items = append(items, r)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].EventDT < items[j].EventDT
	})

	if changed {
		byID := make(map[string]domain.Reminder, len(items))
		for _, r := range items {
			byID[r.ID] = r
		}
		for i, r := range doc.Reminders {
			if fixed, ok := byID[r.ID]; ok {
				doc.Reminders[i] = fixed
			}
		}
		if err := s.store.Save(ctx, doc); err != nil {
			log.Printf("сохранение нормализованных дат: %v", err)
		}
	}

	return items
}
