package models

import (
	"time"
)

// Template is a per-user named group for documents ("Passports",
// "Insurance", ...). Deleting a template never deletes its documents;
// they are detached instead.
type Template struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	// DocumentsCount is joined in on list reads; it is not stored.
	DocumentsCount int `json:"documents_count" db:"-"`
}
