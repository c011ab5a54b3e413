package models

import (
	"time"
)

// Document is a stored file with optional validity dates. EndDate drives
// the expiry reminders; a document without one never expires.
type Document struct {
	ID        int64      `json:"id" db:"id"`
	OwnerID   int64      `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	FileID    string     `json:"file_id" db:"file_id"`
	FileName  string     `json:"file_name" db:"file_name"`
	FileType  string     `json:"file_type" db:"file_type"`
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	// TemplateID is nil for documents uploaded outside any template.
	TemplateID *int64 `json:"template_id,omitempty" db:"template_id"`
	// TemplateName is joined in on reads; it is not a column of the
	// documents table and is nil whenever TemplateID is.
	TemplateName *string   `json:"template_name,omitempty" db:"-"`
	Notes        string    `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DaysUntilExpiry reports the whole calendar days from today until the
// document's end date. Negative values mean the document has already
// expired. ok is false for documents without an end date.
func (d *Document) DaysUntilExpiry(today time.Time) (days int, ok bool) {
	if d.EndDate == nil {
		return 0, false
	}
	return DaysBetween(today, *d.EndDate), true
}

// DaysBetween returns the number of whole days from a to b, ignoring the
// time-of-day and timezone components of both.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// UpdateDocumentParams is a partial update: nil fields are left untouched.
// The Clear flags exist because nil cannot distinguish "don't change" from
// "set to NULL".
type UpdateDocumentParams struct {
	Name          *string    `json:"name,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ClearEndDate  bool       `json:"clear_end_date,omitempty"`
	TemplateID    *int64     `json:"template_id,omitempty"`
	ClearTemplate bool       `json:"clear_template,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (p UpdateDocumentParams) IsEmpty() bool {
	return p.Name == nil && p.StartDate == nil && p.EndDate == nil &&
		!p.ClearEndDate && p.TemplateID == nil && !p.ClearTemplate && p.Notes == nil
}

// DocumentStats summarizes one owner's documents for the /stats command.
type DocumentStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
	Undated      int `json:"undated"`
}
