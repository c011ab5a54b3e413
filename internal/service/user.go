package service

import (
	"context"
	"log/slog"

	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
	"github.com/DiscordantST/document-bot/internal/domain/services"
)

// userService implements the UserService interface
type userService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, logger *slog.Logger) services.UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterUser records the caller, creating them on first contact and
// refreshing their profile fields afterwards
func (s *userService) RegisterUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	user := &models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Debug("user registered",
		"telegram_id", telegramID,
		"username", username,
	)

	return user, nil
}
