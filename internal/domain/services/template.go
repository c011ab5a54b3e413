package services

import (
	"context"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// TemplateService handles template business logic
type TemplateService interface {
	// CheckCreateAllowed fails with a LimitExceededError when the owner
	// is at their template cap
	CheckCreateAllowed(ctx context.Context, ownerID int64) error

	// CreateTemplate creates a template, enforcing the per-owner cap and
	// name uniqueness
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*models.Template, error)

	// GetTemplate retrieves one of the owner's templates
	GetTemplate(ctx context.Context, id, ownerID int64) (*models.Template, error)

	// ListTemplates lists the owner's templates with document counts
	ListTemplates(ctx context.Context, ownerID int64) ([]models.Template, error)

	// DeleteTemplate detaches the template's documents and removes it
	DeleteTemplate(ctx context.Context, id, ownerID int64) error
}

// CreateTemplateRequest represents a template creation request
type CreateTemplateRequest struct {
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
