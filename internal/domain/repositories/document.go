package repositories

import (
	"context"
	"time"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create creates a new document and fills in its generated id
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves one of the owner's documents by id
	GetByID(ctx context.Context, id, ownerID int64) (*models.Document, error)

	// ListByOwner lists the owner's documents, soonest expiry first,
	// undated last. A non-nil templateID restricts to that template.
	ListByOwner(ctx context.Context, ownerID int64, templateID *int64) ([]models.Document, error)

	// CountByOwner counts the owner's documents
	CountByOwner(ctx context.Context, ownerID int64) (int, error)

	// Update applies a partial update to one of the owner's documents
	Update(ctx context.Context, id, ownerID int64, params models.UpdateDocumentParams) error

	// Delete deletes one of the owner's documents
	Delete(ctx context.Context, id, ownerID int64) error

	// Search finds the owner's documents whose name, file name or notes
	// contain the query, case-insensitively
	Search(ctx context.Context, ownerID int64, query string) ([]models.Document, error)

	// DetachTemplate clears the template reference on all of the owner's
	// documents linked to the template
	DetachTemplate(ctx context.Context, templateID, ownerID int64) error

	// Stats summarizes the owner's documents relative to today
	Stats(ctx context.Context, ownerID int64, today time.Time) (*models.DocumentStats, error)

	// FindExpiringIn returns every document, across all owners, whose
	// end date is exactly days calendar days after today
	FindExpiringIn(ctx context.Context, today time.Time, days int) ([]models.Document, error)
}
