package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
	"github.com/DiscordantST/document-bot/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo      repositories.DocumentRepository
	reminderRepo repositories.ReminderRepository
	txManager    repositories.TransactionManager
	cfg          *config.Config
	logger       *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	reminderRepo repositories.ReminderRepository,
	txManager repositories.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:      docRepo,
		reminderRepo: reminderRepo,
		txManager:    txManager,
		cfg:          cfg,
		logger:       logger,
	}
}

// ValidateFile checks the file name against the extension allow-list and
// the size against the configured cap
func (s *documentService) ValidateFile(fileName string, fileSize int64) error {
	if fileName == "" {
		return &domain.ValidationError{Message: "could not determine the file name"}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, e := range s.cfg.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		formats := append([]string(nil), s.cfg.AllowedExtensions...)
		sort.Strings(formats)
		return &domain.ValidationError{
			Message: fmt.Sprintf("unsupported file format (%s), allowed: %s",
				ext, strings.Join(formats, ", ")),
		}
	}

	maxBytes := int64(s.cfg.MaxFileSizeMB) * 1024 * 1024
	if fileSize > maxBytes {
		return &domain.ValidationError{
			Message: fmt.Sprintf("file too large, the maximum size is %d MB", s.cfg.MaxFileSizeMB),
		}
	}

	return nil
}

// CheckUploadAllowed fails with a LimitExceededError when the owner is at
// their document cap
func (s *documentService) CheckUploadAllowed(ctx context.Context, ownerID int64) error {
	count, err := s.docRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count >= s.cfg.MaxDocuments {
		return &domain.LimitExceededError{
			Message: fmt.Sprintf("document limit of %d reached", s.cfg.MaxDocuments),
			Limit:   s.cfg.MaxDocuments,
		}
	}
	return nil
}

// UploadDocument persists a completed upload draft
func (s *documentService) UploadDocument(ctx context.Context, req *services.UploadDocumentRequest) (*models.Document, error) {
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.CheckUploadAllowed(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	doc := &models.Document{
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		FileID:     req.FileID,
		FileName:   req.FileName,
		FileType:   fileTypeFor(req.FileName),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		TemplateID: req.TemplateID,
		Notes:      req.Notes,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"owner_id", doc.OwnerID,
		"name", doc.Name,
		"file_type", doc.FileType,
		"template_id", doc.TemplateID,
	)

	return doc, nil
}

// GetDocument retrieves one of the owner's documents
func (s *documentService) GetDocument(ctx context.Context, id, ownerID int64) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id, ownerID)
}

// ListDocuments lists the owner's documents, optionally filtered to a
// template
func (s *documentService) ListDocuments(ctx context.Context, ownerID int64, templateID *int64) ([]models.Document, error) {
	return s.docRepo.ListByOwner(ctx, ownerID, templateID)
}

// SearchDocuments finds the owner's documents matching the query
func (s *documentService) SearchDocuments(ctx context.Context, ownerID int64, query string) ([]models.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Message: "search query is empty"}
	}
	return s.docRepo.Search(ctx, ownerID, query)
}

// UpdateDocument applies a partial update and returns the fresh document
func (s *documentService) UpdateDocument(ctx context.Context, id, ownerID int64, params models.UpdateDocumentParams) (*models.Document, error) {
	if err := s.validateUpdateParams(params); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.docRepo.Update(ctx, id, ownerID, params); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", id,
		"owner_id", ownerID,
	)

	return doc, nil
}

// DeleteDocument removes a document together with its reminder records.
// Both deletes commit atomically so a crash cannot leave orphaned
// reminder rows pointing at a missing document.
func (s *documentService) DeleteDocument(ctx context.Context, id, ownerID int64) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.docRepo.GetByID(txCtx, id, ownerID); err != nil {
			return err
		}
		if err := s.reminderRepo.DeleteByDocument(txCtx, id); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted",
		"id", id,
		"owner_id", ownerID,
	)

	return nil
}

// DocumentStats summarizes the owner's documents
func (s *documentService) DocumentStats(ctx context.Context, ownerID int64) (*models.DocumentStats, error) {
	return s.docRepo.Stats(ctx, ownerID, time.Now())
}

// validateUploadRequest validates a completed upload draft
func (s *documentService) validateUploadRequest(req *services.UploadDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(config.MinDocumentNameLength, config.MaxDocumentNameLength),
		),
		validation.Field(&req.FileID, validation.Required),
	)
}

// validateUpdateParams validates the fields present in a partial update
func (s *documentService) validateUpdateParams(params models.UpdateDocumentParams) error {
	if params.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}
	if params.Name != nil {
		if err := validation.Validate(*params.Name,
			validation.Required,
			validation.Length(config.MinDocumentNameLength, config.MaxDocumentNameLength),
		); err != nil {
			return fmt.Errorf("name: %v", err)
		}
	}
	return nil
}

// fileTypeFor classifies a file by its extension.
func fileTypeFor(fileName string) string {
	if fileName == "" {
		return "unknown"
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "pdf"
	case ".doc", ".docx", ".odt", ".rtf":
		return "document"
	case ".xls", ".xlsx", ".ods":
		return "spreadsheet"
	case ".ppt", ".pptx", ".odp":
		return "presentation"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".zip", ".rar", ".7z":
		return "archive"
	case ".txt":
		return "text"
	default:
		return "other"
	}
}
