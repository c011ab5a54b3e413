package services

import (
	"context"
	"time"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// DocumentService handles document business logic
type DocumentService interface {
	// ValidateFile checks the file name against the extension allow-list
	// and the size against the configured cap
	ValidateFile(fileName string, fileSize int64) error

	// CheckUploadAllowed fails with a LimitExceededError when the owner
	// is at their document cap
	CheckUploadAllowed(ctx context.Context, ownerID int64) error

	// UploadDocument persists a completed upload draft
	UploadDocument(ctx context.Context, req *UploadDocumentRequest) (*models.Document, error)

	// GetDocument retrieves one of the owner's documents
	GetDocument(ctx context.Context, id, ownerID int64) (*models.Document, error)

	// ListDocuments lists the owner's documents, optionally filtered to a
	// template
	ListDocuments(ctx context.Context, ownerID int64, templateID *int64) ([]models.Document, error)

	// SearchDocuments finds the owner's documents matching the query
	SearchDocuments(ctx context.Context, ownerID int64, query string) ([]models.Document, error)

	// UpdateDocument applies a partial update and returns the fresh document
	UpdateDocument(ctx context.Context, id, ownerID int64, params models.UpdateDocumentParams) (*models.Document, error)

	// DeleteDocument removes a document together with its reminder records
	DeleteDocument(ctx context.Context, id, ownerID int64) error

	// DocumentStats summarizes the owner's documents
	DocumentStats(ctx context.Context, ownerID int64) (*models.DocumentStats, error)
}

// UploadDocumentRequest represents a completed upload conversation
type UploadDocumentRequest struct {
	OwnerID    int64      `json:"owner_id"`
	Name       string     `json:"name"`
	FileID     string     `json:"file_id"`
	FileName   string     `json:"file_name"`
	FileSize   int64      `json:"file_size"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	TemplateID *int64     `json:"template_id,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}
