package repositories

import (
	"context"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// TemplateRepository defines data access operations for templates
type TemplateRepository interface {
	// Create creates a new template and fills in its generated id.
	// Returns a ConflictError when the owner already has a template
	// with the same name.
	Create(ctx context.Context, tmpl *models.Template) error

	// GetByID retrieves one of the owner's templates by id
	GetByID(ctx context.Context, id, ownerID int64) (*models.Template, error)

	// ListByOwner lists the owner's templates with document counts,
	// in name order
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Template, error)

	// CountByOwner counts the owner's templates
	CountByOwner(ctx context.Context, ownerID int64) (int, error)

	// Delete deletes one of the owner's templates. Documents linked to
	// it are the caller's responsibility, see DocumentRepository.DetachTemplate.
	Delete(ctx context.Context, id, ownerID int64) error
}
