package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

// Validation errors the dialogue recovers from by re-prompting.
var (
	ErrEmptyTitle = errors.New("название не может быть пустым")
	ErrBadDate    = errors.New("непонятная дата")
	ErrBadTime    = errors.New("непонятное время")
)

// Manual date entry accepts both forms.
var manualDateLayouts = []string{"02.01.2006", "2006-01-02"}

// StepResult is what a dialogue event produced: the step the session is now
// on, the created reminder when the dialogue committed, and a validation
// error when the input was re-prompted.
type StepResult struct {
	Next    domain.Step
	Created *domain.Reminder
	Err     error
}

// ConversationService owns the per-user add-reminder dialogue sessions.
// One session per user; starting a new one discards any prior session.
// Events whose chat does not match the session's recorded chat are ignored,
// so state never bleeds between chats.
type ConversationService struct {
	mu        sync.Mutex
	sessions  map[int64]*domain.Session
	reminders *ReminderService
	clock     *domain.Clock
}

func NewConversationService(reminders *ReminderService, clock *domain.Clock) *ConversationService {
	return &ConversationService{
		sessions:  make(map[int64]*domain.Session),
		reminders: reminders,
		clock:     clock,
	}
}

// Begin starts (or restarts) a user's dialogue in the given chat.
func (c *ConversationService) Begin(userID int64, chat domain.ChatAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[userID] = &domain.Session{Step: domain.StepTitle, Chat: chat}
}

// Active reports whether the user has a session bound to this chat.
func (c *ConversationService) Active(userID int64, chat domain.ChatAddress) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sessions[userID]
	return ok && st.Chat == chat
}

// Cancel discards the user's session from any state. No reminder is
// created.
func (c *ConversationService) Cancel(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
}

// HandleText advances the dialogue with a free-text message. The bool
// reports whether an active session in this chat consumed the message.
func (c *ConversationService) HandleText(ctx context.Context, userID int64, chat domain.ChatAddress, text string) (StepResult, bool) {
	c.mu.Lock()
	st, ok := c.sessions[userID]
	if !ok || st.Chat != chat {
		c.mu.Unlock()
		return StepResult{}, false
	}

	switch st.Step {
	case domain.StepTitle:
		title := strings.TrimSpace(text)
		if title == "" {
			c.mu.Unlock()
			return StepResult{Next: domain.StepTitle, Err: ErrEmptyTitle}, true
		}
		st.Title = title
		st.Step = domain.StepDatePick
		c.mu.Unlock()
		return StepResult{Next: domain.StepDatePick}, true

	case domain.StepDateManual:
		raw := strings.TrimSpace(text)
		var date time.Time
		parsed := false
		for _, layout := range manualDateLayouts {
			if d, err := time.ParseInLocation(layout, raw, c.clock.Location()); err == nil {
				date = d
				parsed = true
				break
			}
		}
		if !parsed {
			c.mu.Unlock()
			return StepResult{Next: domain.StepDateManual, Err: ErrBadDate}, true
		}
		st.Date = date.Format("2006-01-02")
		st.Step = domain.StepTimePick
		c.mu.Unlock()
		return StepResult{Next: domain.StepTimePick}, true

	case domain.StepTimeManual:
		raw := strings.TrimSpace(text)
		if _, err := time.Parse("15:04", raw); err != nil {
			c.mu.Unlock()
			return StepResult{Next: domain.StepTimeManual, Err: ErrBadTime}, true
		}
		return c.commitLocked(ctx, userID, st, raw), true
	}

	// Text during a picker step: consumed, nothing changes and nothing is
	// re-rendered.
	c.mu.Unlock()
	return StepResult{}, true
}

// PickDate handles a structured date selection from the date keyboard.
func (c *ConversationService) PickDate(userID int64, chat domain.ChatAddress, dateISO string) (StepResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sessions[userID]
	if !ok || st.Chat != chat {
		return StepResult{}, false
	}
	st.Date = dateISO
	st.Step = domain.StepTimePick
	return StepResult{Next: domain.StepTimePick}, true
}

// PickTime handles a structured time selection and commits the reminder.
func (c *ConversationService) PickTime(ctx context.Context, userID int64, chat domain.ChatAddress, hhmm string) (StepResult, bool) {
	c.mu.Lock()
	st, ok := c.sessions[userID]
	if !ok || st.Chat != chat {
		c.mu.Unlock()
		return StepResult{}, false
	}
	return c.commitLocked(ctx, userID, st, hhmm), true
}

// RequestManualDate switches the session to free-text date entry.
func (c *ConversationService) RequestManualDate(userID int64, chat domain.ChatAddress) bool {
	return c.setStep(userID, chat, domain.StepDateManual)
}

// RequestManualTime switches the session to free-text time entry.
func (c *ConversationService) RequestManualTime(userID int64, chat domain.ChatAddress) bool {
	return c.setStep(userID, chat, domain.StepTimeManual)
}

func (c *ConversationService) setStep(userID int64, chat domain.ChatAddress, step domain.Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sessions[userID]
	if !ok || st.Chat != chat {
		return false
	}
	st.Step = step
	return true
}

// commitLocked combines the stored date with a time of day and hands the
// result to the lifecycle manager. A past-time rejection resets the session
// to the date step, keeping the title. Called with c.mu held; releases it.
func (c *ConversationService) commitLocked(ctx context.Context, userID int64, st *domain.Session, hhmm string) StepResult {
	eventTime, err := time.ParseInLocation("2006-01-02 15:04", st.Date+" "+hhmm, c.clock.Location())
	if err != nil {
		step := st.Step
		c.mu.Unlock()
		return StepResult{Next: step, Err: ErrBadTime}
	}

	chat := st.Chat
	title := st.Title
	c.mu.Unlock()

	rem, err := c.reminders.Create(ctx, chat, userID, title, eventTime)
	if err != nil {
		c.mu.Lock()
		if cur, ok := c.sessions[userID]; ok && cur == st {
			cur.Step = domain.StepDatePick
		}
		c.mu.Unlock()
		return StepResult{Next: domain.StepDatePick, Err: err}
	}

	c.mu.Lock()
	delete(c.sessions, userID)
	c.mu.Unlock()
	return StepResult{Next: domain.StepNone, Created: &rem}
}
