package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent, so running this on every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				telegram_id BIGINT PRIMARY KEY,
				username    TEXT NOT NULL DEFAULT '',
				first_name  TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				last_active TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				owner_id    BIGINT NOT NULL REFERENCES %s(telegram_id) ON DELETE CASCADE,
				name        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (owner_id, name)
			)`, tables.Templates, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				owner_id    BIGINT NOT NULL REFERENCES %s(telegram_id) ON DELETE CASCADE,
				name        TEXT NOT NULL,
				file_id     TEXT NOT NULL,
				file_name   TEXT NOT NULL DEFAULT '',
				file_type   TEXT NOT NULL DEFAULT 'other',
				start_date  DATE,
				end_date    DATE,
				template_id BIGINT REFERENCES %s(id) ON DELETE SET NULL,
				notes       TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Documents, tables.Users, tables.Templates),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				document_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				days_before INT NOT NULL,
				sent_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (document_id, days_before)
			)`, tables.RemindersSent, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s(owner_id)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_end_date ON %s(end_date) WHERE end_date IS NOT NULL`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_template ON %s(template_id)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s(owner_id)`,
			tables.Templates, tables.Templates),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	logger.Info("database schema ready",
		"users", tables.Users,
		"documents", tables.Documents,
		"templates", tables.Templates,
		"reminders_sent", tables.RemindersSent)
	return nil
}
