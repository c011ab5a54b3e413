package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
	"github.com/DiscordantST/document-bot/internal/domain/services"
)

// templateService implements the TemplateService interface
type templateService struct {
	tmplRepo  repositories.TemplateRepository
	docRepo   repositories.DocumentRepository
	txManager repositories.TransactionManager
	cfg       *config.Config
	logger    *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	tmplRepo repositories.TemplateRepository,
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
) services.TemplateService {
	return &templateService{
		tmplRepo:  tmplRepo,
		docRepo:   docRepo,
		txManager: txManager,
		cfg:       cfg,
		logger:    logger,
	}
}

// CheckCreateAllowed fails with a LimitExceededError when the owner is at
// their template cap
func (s *templateService) CheckCreateAllowed(ctx context.Context, ownerID int64) error {
	count, err := s.tmplRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count >= s.cfg.MaxTemplates {
		return &domain.LimitExceededError{
			Message: fmt.Sprintf("template limit of %d reached", s.cfg.MaxTemplates),
			Limit:   s.cfg.MaxTemplates,
		}
	}
	return nil
}

// CreateTemplate creates a template, enforcing the per-owner cap and name
// uniqueness
func (s *templateService) CreateTemplate(ctx context.Context, req *services.CreateTemplateRequest) (*models.Template, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.CheckCreateAllowed(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	tmpl := &models.Template{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.tmplRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created",
		"id", tmpl.ID,
		"owner_id", tmpl.OwnerID,
		"name", tmpl.Name,
	)

	return tmpl, nil
}

// GetTemplate retrieves one of the owner's templates
func (s *templateService) GetTemplate(ctx context.Context, id, ownerID int64) (*models.Template, error) {
	return s.tmplRepo.GetByID(ctx, id, ownerID)
}

// ListTemplates lists the owner's templates with document counts
func (s *templateService) ListTemplates(ctx context.Context, ownerID int64) ([]models.Template, error) {
	return s.tmplRepo.ListByOwner(ctx, ownerID)
}

// DeleteTemplate detaches the template's documents and removes it. Both
// writes commit atomically; the documents survive the template.
func (s *templateService) DeleteTemplate(ctx context.Context, id, ownerID int64) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.tmplRepo.GetByID(txCtx, id, ownerID); err != nil {
			return err
		}
		if err := s.docRepo.DetachTemplate(txCtx, id, ownerID); err != nil {
			return err
		}
		return s.tmplRepo.Delete(txCtx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("template deleted",
		"id", id,
		"owner_id", ownerID,
	)

	return nil
}

// validateCreateRequest validates a template creation request
func (s *templateService) validateCreateRequest(req *services.CreateTemplateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(config.MinTemplateNameLength, config.MaxTemplateNameLength),
		),
	)
}
