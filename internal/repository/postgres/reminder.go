package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiscordantST/document-bot/internal/domain/repositories"
)

// PostgresReminderRepository implements the ReminderRepository interface
type PostgresReminderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(config *RepositoryConfig) repositories.ReminderRepository {
	return &PostgresReminderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// WasSent reports whether the reminder for this document at this threshold
// was already recorded
func (r *PostgresReminderRepository) WasSent(ctx context.Context, documentID int64, daysBefore int) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE document_id = $1 AND days_before = $2
		)
	`, r.tables.RemindersSent)

	executor := GetExecutor(ctx, r.pool)
	var sent bool
	if err := executor.QueryRow(ctx, query, documentID, daysBefore).Scan(&sent); err != nil {
		return false, fmt.Errorf("check reminder: %w", err)
	}

	return sent, nil
}

// MarkSent records a delivered reminder. Recording the same pair twice is
// not an error.
func (r *PostgresReminderRepository) MarkSent(ctx context.Context, documentID int64, daysBefore int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, days_before)
		VALUES ($1, $2)
		ON CONFLICT (document_id, days_before) DO NOTHING
	`, r.tables.RemindersSent)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, daysBefore); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	return nil
}

// DeleteByDocument removes the document's reminder records
func (r *PostgresReminderRepository) DeleteByDocument(ctx context.Context, documentID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.RemindersSent)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}

	return nil
}
