// Package session keeps per-user conversation state in process memory.
// State lives exactly as long as the process: a restart drops every active
// conversation, which is acceptable because any flow can be restarted with
// a single message.
package session

import (
	"sync"
	"time"
)

// State identifies which input the bot is waiting for from a user.
type State int

const (
	// StateIdle means no conversation is active.
	StateIdle State = iota

	// Upload flow, in order.
	StateAwaitingName
	StateAwaitingStartDate
	StateAwaitingEndDate
	StateAwaitingTemplate

	// Standalone single-prompt flows.
	StateAwaitingTemplateName
	StateAwaitingSearchQuery

	// Edit flows keyed to one document.
	StateAwaitingNewName
	StateAwaitingEditStart
	StateAwaitingEditEnd
	StateAwaitingEditTemplate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingStartDate:
		return "awaiting_start_date"
	case StateAwaitingEndDate:
		return "awaiting_end_date"
	case StateAwaitingTemplate:
		return "awaiting_template"
	case StateAwaitingTemplateName:
		return "awaiting_template_name"
	case StateAwaitingSearchQuery:
		return "awaiting_search_query"
	case StateAwaitingNewName:
		return "awaiting_new_name"
	case StateAwaitingEditStart:
		return "awaiting_edit_start"
	case StateAwaitingEditEnd:
		return "awaiting_edit_end"
	case StateAwaitingEditTemplate:
		return "awaiting_edit_template"
	default:
		return "unknown"
	}
}

// UploadDraft accumulates the answers of an upload conversation until the
// document is saved.
type UploadDraft struct {
	FileID    string
	FileName  string
	FileType  string
	FileSize  int64
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// EditDraft points an edit conversation at the document being changed.
// StartDate holds the already-answered start date while the end date is
// still being asked.
type EditDraft struct {
	DocumentID int64
	StartDate  *time.Time
}

// Session is one user's conversation state. Manual marks that the user
// asked to type a date by hand, which is the only time free text is
// interpreted as a date.
type Session struct {
	State  State
	Manual bool
	Upload *UploadDraft
	Edit   *EditDraft
}

// InConversation reports whether the user is mid-flow.
func (s Session) InConversation() bool {
	return s.State != StateIdle
}

// Store is a concurrency-safe map of user id to session. The dispatcher
// already serializes events per user, so the lock only guards the map
// itself across users.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]Session)}
}

// Get returns the user's session, or a zero idle session if none exists.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Set stores the user's session.
func (s *Store) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Clear removes the user's session, returning them to idle.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Active reports whether the user has a conversation in progress.
func (s *Store) Active(userID int64) bool {
	return s.Get(userID).InConversation()
}
