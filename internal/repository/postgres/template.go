package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
)

// PostgresTemplateRepository implements the TemplateRepository interface
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new template and fills in its generated id
func (r *PostgresTemplateRepository) Create(ctx context.Context, tmpl *models.Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tmpl.OwnerID,
		tmpl.Name,
		tmpl.Description,
	).Scan(&tmpl.ID, &tmpl.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("template '%s' already exists: %w", tmpl.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create template: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's templates by id
func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT tp.id, tp.owner_id, tp.name, tp.description, tp.created_at,
		       COUNT(d.id)
		FROM %s tp
		LEFT JOIN %s d ON d.template_id = tp.id
		WHERE tp.id = $1 AND tp.owner_id = $2
		GROUP BY tp.id, tp.owner_id, tp.name, tp.description, tp.created_at
	`, r.tables.Templates, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	var tmpl models.Template
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&tmpl.ID,
		&tmpl.OwnerID,
		&tmpl.Name,
		&tmpl.Description,
		&tmpl.CreatedAt,
		&tmpl.DocumentsCount,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("template %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	return &tmpl, nil
}

// ListByOwner lists the owner's templates with document counts, in name order
func (r *PostgresTemplateRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT tp.id, tp.owner_id, tp.name, tp.description, tp.created_at,
		       COUNT(d.id)
		FROM %s tp
		LEFT JOIN %s d ON d.template_id = tp.id
		WHERE tp.owner_id = $1
		GROUP BY tp.id, tp.owner_id, tp.name, tp.description, tp.created_at
		ORDER BY tp.name
	`, r.tables.Templates, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var tmpl models.Template
		err := rows.Scan(
			&tmpl.ID,
			&tmpl.OwnerID,
			&tmpl.Name,
			&tmpl.Description,
			&tmpl.CreatedAt,
			&tmpl.DocumentsCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}

// CountByOwner counts the owner's templates
func (r *PostgresTemplateRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_id = $1`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	var count int
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}

	return count, nil
}

// Delete deletes one of the owner's templates
func (r *PostgresTemplateRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
