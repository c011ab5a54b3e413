package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiscordantST/document-bot/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users         string
	Documents     string
	Templates     string
	RemindersSent string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:         fmt.Sprintf("%susers", prefix),
		Documents:     fmt.Sprintf("%sdocuments", prefix),
		Templates:     fmt.Sprintf("%stemplates", prefix),
		RemindersSent: fmt.Sprintf("%sreminders_sent", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies it with a
// ping.
//
// Table names are interpolated with fmt.Sprintf before the SQL reaches the
// server, so each prefix (dev_, test_, prod_) gets its own statements and
// prepared-statement caching stays safe.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	// Port 6543 is the transaction-pooling PgBouncer port on hosted
	// Postgres. It cannot hold prepared statements across transactions,
	// so switch to description caching unless the connection string
	// already picked a mode.
	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in the context when one is
// present, and the pool otherwise. Repositories call this on every query so
// they automatically participate in surrounding transactions.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
