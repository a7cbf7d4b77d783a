package domain

import (
	"github.com/google/uuid"
)

// ChatAddress identifies the destination conversation: a chat plus an
// optional forum topic (thread) inside it. A zero ThreadID means the chat
// itself.
type ChatAddress struct {
	ChatID   int64
	ThreadID int
}

type Reminder struct {
	ID        string `json:"id" bson:"id"`
	ChatID    int64  `json:"chat_id" bson:"chat_id"`
	ThreadID  int    `json:"thread_id,omitempty" bson:"thread_id,omitempty"`
	CreatorID int64  `json:"creator_id" bson:"creator_id"`
	Title     string `json:"title" bson:"title"`
	EventDT   string `json:"event_dt" bson:"event_dt"`
	CreatedAt string `json:"created_at" bson:"created_at"`
}

// NewReminder builds a reminder with a fresh id. EventDT and CreatedAt are
// canonical serialized timestamps produced by the Clock.
func NewReminder(addr ChatAddress, creatorID int64, title, eventDT, createdAt string) Reminder {
	return Reminder{
		ID:        uuid.NewString(),
		ChatID:    addr.ChatID,
		ThreadID:  addr.ThreadID,
		CreatorID: creatorID,
		Title:     title,
		EventDT:   eventDT,
		CreatedAt: createdAt,
	}
}

func (r Reminder) Address() ChatAddress {
	return ChatAddress{ChatID: r.ChatID, ThreadID: r.ThreadID}
}
