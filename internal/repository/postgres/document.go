package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// documentColumns is the SELECT list shared by every read, with the
// template name joined in.
func (r *PostgresDocumentRepository) documentColumns() string {
	return `d.id, d.owner_id, d.name, d.file_id, d.file_name, d.file_type,
		d.start_date, d.end_date, d.template_id, t.name, d.notes,
		d.created_at, d.updated_at`
}

func scanDocument(row interface{ Scan(...interface{}) error }, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Name,
		&doc.FileID,
		&doc.FileName,
		&doc.FileType,
		&doc.StartDate,
		&doc.EndDate,
		&doc.TemplateID,
		&doc.TemplateName,
		&doc.Notes,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create creates a new document and fills in its generated id
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, file_id, file_name, file_type, start_date, end_date, template_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.OwnerID,
		doc.Name,
		doc.FileID,
		doc.FileName,
		doc.FileType,
		doc.StartDate,
		doc.EndDate,
		doc.TemplateID,
		doc.Notes,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document references a missing template: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's documents by id
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		LEFT JOIN %s t ON t.id = d.template_id
		WHERE d.id = $1 AND d.owner_id = $2
	`, r.documentColumns(), r.tables.Documents, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	var doc models.Document
	if err := scanDocument(executor.QueryRow(ctx, query, id, ownerID), &doc); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByOwner lists the owner's documents, soonest expiry first, undated
// last. A non-nil templateID restricts to that template.
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID int64, templateID *int64) ([]models.Document, error) {
	var query string
	var args []interface{}

	if templateID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s d
			LEFT JOIN %s t ON t.id = d.template_id
			WHERE d.owner_id = $1
			ORDER BY d.end_date ASC NULLS LAST, d.created_at DESC
		`, r.documentColumns(), r.tables.Documents, r.tables.Templates)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s d
			LEFT JOIN %s t ON t.id = d.template_id
			WHERE d.owner_id = $1 AND d.template_id = $2
			ORDER BY d.end_date ASC NULLS LAST, d.created_at DESC
		`, r.documentColumns(), r.tables.Documents, r.tables.Templates)
		args = append(args, ownerID, *templateID)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// CountByOwner counts the owner's documents
func (r *PostgresDocumentRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_id = $1`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	var count int
	if err := executor.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

// Update applies a partial update to one of the owner's documents
func (r *PostgresDocumentRepository) Update(ctx context.Context, id, ownerID int64, params models.UpdateDocumentParams) error {
	if params.IsEmpty() {
		return nil
	}

	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Name != nil {
		set = append(set, "name = "+arg(*params.Name))
	}
	if params.StartDate != nil {
		set = append(set, "start_date = "+arg(*params.StartDate))
	}
	if params.ClearEndDate {
		set = append(set, "end_date = NULL")
	} else if params.EndDate != nil {
		set = append(set, "end_date = "+arg(*params.EndDate))
	}
	if params.ClearTemplate {
		set = append(set, "template_id = NULL")
	} else if params.TemplateID != nil {
		set = append(set, "template_id = "+arg(*params.TemplateID))
	}
	if params.Notes != nil {
		set = append(set, "notes = "+arg(*params.Notes))
	}
	set = append(set, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s AND owner_id = %s`,
		r.tables.Documents, strings.Join(set, ", "), arg(id), arg(ownerID))

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document references a missing template: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes one of the owner's documents
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Search finds the owner's documents whose name, file name or notes contain
// the query, case-insensitively
func (r *PostgresDocumentRepository) Search(ctx context.Context, ownerID int64, query string) ([]models.Document, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		LEFT JOIN %s t ON t.id = d.template_id
		WHERE d.owner_id = $1
		  AND (d.name ILIKE $2 OR d.file_name ILIKE $2 OR d.notes ILIKE $2)
		ORDER BY d.end_date ASC NULLS LAST, d.created_at DESC
	`, r.documentColumns(), r.tables.Documents, r.tables.Templates)

	pattern := "%" + escapeLikePattern(query) + "%"

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, sql, ownerID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// DetachTemplate clears the template reference on all of the owner's
// documents linked to the template
func (r *PostgresDocumentRepository) DetachTemplate(ctx context.Context, templateID, ownerID int64) error {
	query := fmt.Sprintf(`
		UPDATE %s SET template_id = NULL, updated_at = now()
		WHERE template_id = $1 AND owner_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, templateID, ownerID); err != nil {
		return fmt.Errorf("detach template: %w", err)
	}

	return nil
}

// Stats summarizes the owner's documents relative to today
func (r *PostgresDocumentRepository) Stats(ctx context.Context, ownerID int64, today time.Time) (*models.DocumentStats, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE end_date < $2::date),
			COUNT(*) FILTER (WHERE end_date >= $2::date AND end_date <= $2::date + 30),
			COUNT(*) FILTER (WHERE end_date IS NULL)
		FROM %s
		WHERE owner_id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	var stats models.DocumentStats
	err := executor.QueryRow(ctx, query, ownerID, today).Scan(
		&stats.Total,
		&stats.Expired,
		&stats.ExpiringSoon,
		&stats.Undated,
	)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}

	// Undated documents never expire, so they count as active.
	stats.Active = stats.Total - stats.Expired

	return &stats, nil
}

// FindExpiringIn returns every document, across all owners, whose end date
// is exactly days calendar days after today
func (r *PostgresDocumentRepository) FindExpiringIn(ctx context.Context, today time.Time, days int) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		LEFT JOIN %s t ON t.id = d.template_id
		WHERE d.end_date = $1::date + $2
		ORDER BY d.owner_id ASC, d.id ASC
	`, r.documentColumns(), r.tables.Documents, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, today, days)
	if err != nil {
		return nil, fmt.Errorf("find expiring documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// escapeLikePattern escapes LIKE wildcards so user input matches literally.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
