package services

import (
	"context"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// UserService handles user registration
type UserService interface {
	// RegisterUser records the caller, creating them on first contact
	// and refreshing their profile fields afterwards
	RegisterUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error)
}
