package repositories

import (
	"context"

	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Upsert inserts the user on first contact and refreshes
	// username, first name and last_active on every later one
	Upsert(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by Telegram id
	GetByID(ctx context.Context, telegramID int64) (*models.User, error)
}
