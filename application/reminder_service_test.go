package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

type memStore struct {
	mu    sync.Mutex
	doc   domain.Document
	saves int
}

func (s *memStore) Load(ctx context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := domain.Document{Reminders: append([]domain.Reminder(nil), s.doc.Reminders...)}
	return doc, nil
}

func (s *memStore) Save(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.saves++
	return nil
}

type scheduledJob struct {
	fireAt time.Time
	fn     func()
}

type fakeScheduler struct {
	mu       sync.Mutex
	jobs     map[string]scheduledJob
	canceled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]scheduledJob)}
}

func (s *fakeScheduler) Schedule(jobID string, fireAt time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = scheduledJob{fireAt: fireAt, fn: fn}
}

func (s *fakeScheduler) ScheduleRecurring(jobID string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = scheduledJob{fn: fn}
}

func (s *fakeScheduler) Cancel(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	s.canceled = append(s.canceled, jobID)
}

func (s *fakeScheduler) job(jobID string) (scheduledJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	return j, ok
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type sentMessage struct {
	addr domain.ChatAddress
	text string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Send(addr domain.ChatAddress, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{addr: addr, text: text})
	return nil
}

func newTestService(t *testing.T) (*ReminderService, *memStore, *fakeScheduler, *fakeNotifier) {
	t.Helper()
	clock, err := domain.NewClock("Europe/Moscow")
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	store := &memStore{}
	scheduler := newFakeScheduler()
	notifier := &fakeNotifier{}
	svc := NewReminderService(store, scheduler, clock, notifier, 24*time.Hour)
	return svc, store, scheduler, notifier
}

var testChat = domain.ChatAddress{ChatID: -100500, ThreadID: 3}

func TestCreateRejectsPastTime(t *testing.T) {
	svc, store, scheduler, _ := newTestService(t)
	ctx := context.Background()

	for _, offset := range []time.Duration{0, -time.Second, -48 * time.Hour} {
		_, err := svc.Create(ctx, testChat, 1, "Опоздавшее", svc.clock.Now().Add(offset))
		if !errors.Is(err, ErrPastTime) {
			t.Fatalf("offset %v: expected ErrPastTime, got %v", offset, err)
		}
	}

	if len(store.doc.Reminders) != 0 {
		t.Fatalf("rejected create persisted %d reminders", len(store.doc.Reminders))
	}
	if scheduler.count() != 0 {
		t.Fatalf("rejected create scheduled %d jobs", scheduler.count())
	}
}

func TestCreateSchedulesBothJobs(t *testing.T) {
	svc, store, scheduler, _ := newTestService(t)
	ctx := context.Background()

	// Serialization is second-granular; keep the input aligned so derived
	// fire times compare exactly.
	eventTime := svc.clock.Now().Add(48 * time.Hour).Truncate(time.Second)
	rem, err := svc.Create(ctx, testChat, 7, "Собрание", eventTime)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(store.doc.Reminders) != 1 || store.doc.Reminders[0].ID != rem.ID {
		t.Fatalf("reminder not persisted: %+v", store.doc.Reminders)
	}

	job24, ok24 := scheduler.job(rem.ID + "_24h")
	job1, ok1 := scheduler.job(rem.ID + "_1h")
	if !ok24 || !ok1 {
		t.Fatalf("expected both jobs registered, got 24h=%v 1h=%v", ok24, ok1)
	}
	if !job24.fireAt.Equal(eventTime.Add(-24 * time.Hour)) {
		t.Fatalf("24h job fires at %v, want %v", job24.fireAt, eventTime.Add(-24*time.Hour))
	}
	if !job1.fireAt.Equal(eventTime.Add(-time.Hour)) {
		t.Fatalf("1h job fires at %v, want %v", job1.fireAt, eventTime.Add(-time.Hour))
	}
	if !job24.fireAt.Before(job1.fireAt) {
		t.Fatal("24h notice must fire before the 1h notice")
	}
}

func TestRegisterJobsSkipsElapsedOffsets(t *testing.T) {
	svc, _, scheduler, _ := newTestService(t)
	ctx := context.Background()

	// Between 1h and 24h out: only the 1h notice remains schedulable.
	rem, err := svc.Create(ctx, testChat, 1, "Скоро", svc.clock.Now().Add(12*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := scheduler.job(rem.ID + "_24h"); ok {
		t.Fatal("elapsed 24h offset must not be scheduled")
	}
	if _, ok := scheduler.job(rem.ID + "_1h"); !ok {
		t.Fatal("1h job missing")
	}
	if !contains(scheduler.canceled, rem.ID+"_24h") {
		t.Fatal("elapsed offset must cancel any existing job with its id")
	}

	// Within the last hour: no jobs at all, both ids canceled.
	rem2, err := svc.Create(ctx, testChat, 1, "Совсем скоро", svc.clock.Now().Add(30*time.Minute))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := scheduler.job(rem2.ID + "_24h"); ok {
		t.Fatal("unexpected 24h job")
	}
	if _, ok := scheduler.job(rem2.ID + "_1h"); ok {
		t.Fatal("unexpected 1h job")
	}
	if !contains(scheduler.canceled, rem2.ID+"_24h") || !contains(scheduler.canceled, rem2.ID+"_1h") {
		t.Fatal("both elapsed offsets must be canceled")
	}
}

func TestNotificationDelivery(t *testing.T) {
	svc, _, scheduler, notifier := newTestService(t)
	ctx := context.Background()

	eventTime := svc.clock.Now().Add(48 * time.Hour)
	rem, err := svc.Create(ctx, testChat, 7, "Инвентаризация", eventTime)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	job, ok := scheduler.job(rem.ID + "_1h")
	if !ok {
		t.Fatal("1h job missing")
	}
	job.fn()

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.addr != testChat {
		t.Fatalf("notification went to %+v, want %+v", msg.addr, testChat)
	}
	if !strings.Contains(msg.text, "Инвентаризация") || !strings.Contains(msg.text, "за 1 час") {
		t.Fatalf("unexpected notification text: %q", msg.text)
	}
}

func TestRehydrateRebuildsJobsAndNormalizes(t *testing.T) {
	svc, store, scheduler, _ := newTestService(t)
	ctx := context.Background()

	future := svc.clock.Now().Add(72 * time.Hour)
	// A legacy zone-less timestamp: rehydration must canonicalize it.
	naive := future.Format("2006-01-02T15:04:05")
	rem := domain.NewReminder(testChat, 1, "Старый формат", naive, svc.clock.Format(svc.clock.Now()))
	store.doc = domain.Document{Reminders: []domain.Reminder{rem}}

	svc.Rehydrate(ctx)

	if _, ok := scheduler.job(rem.ID + "_24h"); !ok {
		t.Fatal("24h job not rebuilt")
	}
	if _, ok := scheduler.job(rem.ID + "_1h"); !ok {
		t.Fatal("1h job not rebuilt")
	}

	// A second rehydration replaces jobs in place, never duplicates them.
	svc.Rehydrate(ctx)
	if scheduler.count() != 2 {
		t.Fatalf("expected 2 jobs after repeated rehydration, got %d", scheduler.count())
	}

	saved := store.doc.Reminders[0].EventDT
	if saved == naive {
		t.Fatal("naive timestamp not normalized")
	}
	if parsed, err := svc.clock.Parse(saved); err != nil || !parsed.Equal(future.Truncate(time.Second)) {
		t.Fatalf("normalization changed the instant: %q", saved)
	}
}

func TestRehydrateEmptyStoreWritesNothing(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	svc.Rehydrate(context.Background())
	if store.saves != 0 {
		t.Fatalf("rehydrate on empty store saved %d times", store.saves)
	}
}

func TestCleanupExpiredBoundary(t *testing.T) {
	svc, store, scheduler, _ := newTestService(t)
	ctx := context.Background()
	now := svc.clock.Now()

	expired := domain.NewReminder(testChat, 1, "Просрочено", svc.clock.Format(now.Add(-24*time.Hour-time.Second)), svc.clock.Format(now))
	kept := domain.NewReminder(testChat, 1, "Ещё живое", svc.clock.Format(now.Add(-24*time.Hour+time.Second)), svc.clock.Format(now))
	store.doc = domain.Document{Reminders: []domain.Reminder{expired, kept}}

	svc.CleanupExpired(ctx)

	if len(store.doc.Reminders) != 1 || store.doc.Reminders[0].ID != kept.ID {
		t.Fatalf("expected only the fresh reminder kept, got %+v", store.doc.Reminders)
	}
	if !contains(scheduler.canceled, expired.ID+"_24h") || !contains(scheduler.canceled, expired.ID+"_1h") {
		t.Fatal("removed reminder's jobs must be canceled")
	}
}

func TestCleanupRemovesCorruptEntries(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	now := svc.clock.Now()

	corrupt := domain.NewReminder(testChat, 1, "Битое", "не дата", svc.clock.Format(now))
	valid := domain.NewReminder(testChat, 1, "Нормальное", svc.clock.Format(now.Add(48*time.Hour)), svc.clock.Format(now))
	store.doc = domain.Document{Reminders: []domain.Reminder{corrupt, valid}}

	svc.CleanupExpired(ctx)

	if len(store.doc.Reminders) != 1 || store.doc.Reminders[0].ID != valid.ID {
		t.Fatalf("corrupt entry must be removed, valid kept: %+v", store.doc.Reminders)
	}
}

func TestCleanupNoopOnEmptyStore(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	svc.CleanupExpired(context.Background())
	if store.saves != 0 {
		t.Fatalf("cleanup of empty store saved %d times", store.saves)
	}
}

func TestCleanupNoopWhenNothingExpired(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	now := svc.clock.Now()

	rem := domain.NewReminder(testChat, 1, "Свежее", svc.clock.Format(now.Add(time.Hour)), svc.clock.Format(now))
	store.doc = domain.Document{Reminders: []domain.Reminder{rem}}
	store.saves = 0

	svc.CleanupExpired(ctx)
	if store.saves != 0 {
		t.Fatalf("cleanup with nothing to remove saved %d times", store.saves)
	}
}

func TestListForChatSortedAndScoped(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	now := svc.clock.Now()

	later := domain.NewReminder(testChat, 1, "Позже", svc.clock.Format(now.Add(72*time.Hour)), svc.clock.Format(now))
	sooner := domain.NewReminder(testChat, 1, "Раньше", svc.clock.Format(now.Add(24*time.Hour)), svc.clock.Format(now))
	otherChat := domain.NewReminder(domain.ChatAddress{ChatID: 999}, 1, "Чужое", svc.clock.Format(now.Add(48*time.Hour)), svc.clock.Format(now))
	corrupt := domain.NewReminder(testChat, 1, "Битое", "мусор", svc.clock.Format(now))
	store.doc = domain.Document{Reminders: []domain.Reminder{later, otherChat, corrupt, sooner}}

	items := svc.ListForChat(ctx, testChat)

	if len(items) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(items))
	}
	if items[0].ID != sooner.ID || items[1].ID != later.ID {
		t.Fatalf("expected ascending order by event time, got %q then %q", items[0].Title, items[1].Title)
	}
}

func TestListForChatSelfHealsLegacyTimestamps(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	now := svc.clock.Now()

	naive := now.Add(48 * time.Hour).Format("2006-01-02T15:04:05")
	rem := domain.NewReminder(testChat, 1, "Легаси", naive, svc.clock.Format(now))
	store.doc = domain.Document{Reminders: []domain.Reminder{rem}}
	store.saves = 0

	items := svc.ListForChat(ctx, testChat)

	if len(items) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(items))
	}
	if items[0].EventDT == naive {
		t.Fatal("listing must return the canonical serialized form")
	}
	if store.saves != 1 {
		t.Fatalf("expected corrected form persisted back, saves=%d", store.saves)
	}
	if store.doc.Reminders[0].EventDT != items[0].EventDT {
		t.Fatal("store not self-healed")
	}
}

func TestStartCleanupRegistersRecurringSweep(t *testing.T) {
	svc, _, scheduler, _ := newTestService(t)
	svc.StartCleanup(time.Minute)
	if _, ok := scheduler.job("cleanup_expired"); !ok {
		t.Fatal("cleanup sweep not registered")
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
