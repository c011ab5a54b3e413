package repositories

import (
	"context"
)

// ReminderRepository tracks which expiry reminders were already delivered,
// so each (document, days-before) pair fires at most once.
type ReminderRepository interface {
	// WasSent reports whether the reminder for this document at this
	// threshold was already recorded
	WasSent(ctx context.Context, documentID int64, daysBefore int) (bool, error)

	// MarkSent records a delivered reminder. Recording the same pair
	// twice is not an error.
	MarkSent(ctx context.Context, documentID int64, daysBefore int) error

	// DeleteByDocument removes the document's reminder records
	DeleteByDocument(ctx context.Context, documentID int64) error
}
