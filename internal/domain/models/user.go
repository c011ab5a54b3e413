package models

import (
	"time"
)

// User is a bot user keyed by their Telegram id. In private chats the
// chat id equals the user id, so this is also the delivery address.
type User struct {
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   string    `json:"username" db:"username"`
	FirstName  string    `json:"first_name" db:"first_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastActive time.Time `json:"last_active" db:"last_active"`
}
