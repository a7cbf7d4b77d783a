package domain

import (
	"context"
)

// Document is the single persisted unit: the full set of reminders. Every
// save replaces the whole document, so a reader always observes either the
// previous or the next consistent version.
type Document struct {
	Reminders []Reminder `json:"reminders" bson:"reminders"`
}

// ReminderStore is the persistence contract for the reminders document.
//
// Load on a missing or corrupt backing document returns an empty Document
// and a nil error: corruption means "no data yet", it is never fatal.
// Higher-level operations are load-mutate-save round trips; the last writer
// wins, there is no optimistic-concurrency token.
type ReminderStore interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}
