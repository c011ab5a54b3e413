// Package scheduler runs the daily expiry sweep and delivers reminders.
// Every sweep walks the configured day thresholds, finds documents whose
// expiry lands exactly that many days ahead, and messages each owner once
// per document and threshold.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

// DocumentSource lists documents expiring a given number of days ahead.
// The postgres document repository satisfies it.
type DocumentSource interface {
	FindExpiringIn(ctx context.Context, today time.Time, days int) ([]models.Document, error)
}

// ReminderLedger tracks which (document, threshold) pairs were already
// notified. The postgres reminder repository satisfies it.
type ReminderLedger interface {
	WasSent(ctx context.Context, documentID int64, daysBefore int) (bool, error)
	MarkSent(ctx context.Context, documentID int64, daysBefore int) error
}

// Sender delivers one reminder message. *telegram.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
}

// Config wires the scheduler's collaborators.
type Config struct {
	Documents DocumentSource
	Reminders ReminderLedger
	Sender    Sender
	Catalog   *catalog.Catalog
	Days      []int
	Hour      int
	Minute    int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Scheduler owns the reminder loop.
type Scheduler struct {
	documents DocumentSource
	reminders ReminderLedger
	sender    Sender
	catalog   *catalog.Catalog
	days      []int
	hour      int
	minute    int
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a scheduler. Now is injectable for tests; nil means
// time.Now.
func New(cfg Config) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		documents: cfg.Documents,
		reminders: cfg.Reminders,
		sender:    cfg.Sender,
		catalog:   cfg.Catalog,
		days:      cfg.Days,
		hour:      cfg.Hour,
		minute:    cfg.Minute,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// Run sweeps once immediately, then daily at the configured time, until
// ctx is cancelled. The immediate sweep covers restarts: documents whose
// reminder day passed while the bot was down are caught up, and the
// ledger keeps already-notified ones quiet.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)

	for {
		next := s.nextRun()
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// nextRun returns the next configured wall-clock time strictly after now.
func (s *Scheduler) nextRun() time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce performs one full reminder sweep across all thresholds.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log := s.logger.With("run_id", uuid.NewString())
	today := s.now()

	log.Info("reminder sweep started", "thresholds", s.days)

	var sent, skipped, failed int
	for _, days := range s.days {
		docs, err := s.documents.FindExpiringIn(ctx, today, days)
		if err != nil {
			log.Error("failed to find expiring documents", "days", days, "error", err)
			failed++
			continue
		}

		for i := range docs {
			doc := &docs[i]

			already, err := s.reminders.WasSent(ctx, doc.ID, days)
			if err != nil {
				log.Error("failed to check reminder ledger",
					"document_id", doc.ID, "days", days, "error", err)
				failed++
				continue
			}
			if already {
				skipped++
				continue
			}

			if err := s.deliver(ctx, doc, days); err != nil {
				log.Error("failed to deliver reminder",
					"document_id", doc.ID, "owner_id", doc.OwnerID, "days", days, "error", err)
				failed++
				continue
			}

			// The ledger records delivery, not intent: a crash between
			// send and record re-sends rather than silently dropping.
			if err := s.reminders.MarkSent(ctx, doc.ID, days); err != nil {
				log.Error("failed to record reminder",
					"document_id", doc.ID, "days", days, "error", err)
			}
			sent++
		}
	}

	log.Info("reminder sweep finished", "sent", sent, "skipped", skipped, "failed", failed)
}

func (s *Scheduler) deliver(ctx context.Context, doc *models.Document, days int) error {
	key, data := reminderMessage(doc, days)
	_, err := s.sender.SendMessage(ctx, doc.OwnerID, s.catalog.Render(key, data), nil)
	return err
}

// reminderMessage picks the urgency tier for a threshold.
func reminderMessage(doc *models.Document, days int) (string, map[string]string) {
	data := map[string]string{
		"name": doc.Name,
		"days": fmt.Sprint(days),
	}
	switch {
	case days == 0:
		return "reminder_today", data
	case days == 1:
		return "reminder_tomorrow", data
	case days <= 7:
		return "reminder_soon", data
	default:
		if doc.EndDate != nil {
			data["date"] = catalog.FormatDate(*doc.EndDate)
		}
		return "reminder_later", data
	}
}
