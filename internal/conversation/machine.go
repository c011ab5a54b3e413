// Package conversation implements the multi-step flows as an explicit
// state machine over the session store. The machine decides transitions
// and outcomes; rendering and transport stay with the caller.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/services"
	"github.com/DiscordantST/document-bot/internal/session"
)

// Machine advances per-user conversations.
type Machine struct {
	store     *session.Store
	users     services.UserService
	documents services.DocumentService
	templates services.TemplateService
	logger    *slog.Logger
	now       func() time.Time
}

// NewMachine creates a conversation machine. now is injectable so date
// arithmetic is testable; pass time.Now in production.
func NewMachine(
	store *session.Store,
	users services.UserService,
	documents services.DocumentService,
	templates services.TemplateService,
	logger *slog.Logger,
	now func() time.Time,
) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		store:     store,
		users:     users,
		documents: documents,
		templates: templates,
		logger:    logger,
		now:       now,
	}
}

// Handle feeds one user event into the machine and returns the effect to
// render. Errors are returned only when nothing user-facing could be
// decided; every in-flow failure becomes a reply.
func (m *Machine) Handle(ctx context.Context, userID int64, in Input) (Effect, error) {
	switch in.Kind {
	case InputFile:
		return m.handleFile(ctx, userID, in)
	case InputCancel:
		return m.handleCancel(userID), nil
	}

	sess := m.store.Get(userID)
	switch sess.State {
	case session.StateAwaitingName:
		return m.handleName(sess, userID, in), nil
	case session.StateAwaitingStartDate:
		return m.handleStartDate(sess, userID, in), nil
	case session.StateAwaitingEndDate:
		return m.handleEndDate(ctx, sess, userID, in)
	case session.StateAwaitingTemplate:
		return m.handleTemplateChoice(ctx, sess, userID, in), nil
	case session.StateAwaitingTemplateName:
		return m.handleTemplateName(ctx, sess, userID, in), nil
	case session.StateAwaitingSearchQuery:
		return m.handleSearchQuery(ctx, userID, in), nil
	case session.StateAwaitingNewName:
		return m.handleNewName(ctx, sess, userID, in), nil
	case session.StateAwaitingEditStart:
		return m.handleEditStart(sess, userID, in), nil
	case session.StateAwaitingEditEnd:
		return m.handleEditEnd(ctx, sess, userID, in)
	case session.StateAwaitingEditTemplate:
		return m.handleEditTemplate(ctx, sess, userID, in), nil
	default:
		// Nothing active; the caller decides what idle text means.
		return Effect{}, nil
	}
}

// BeginTemplateCreate starts the template naming conversation. The limit
// is checked up front so the user is not asked to type a name that cannot
// be saved.
func (m *Machine) BeginTemplateCreate(ctx context.Context, userID int64) (Effect, error) {
	if err := m.templates.CheckCreateAllowed(ctx, userID); err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			return Effect{
				Reply:   &Reply{Key: "limit_reached_templates", Data: map[string]string{"limit": fmt.Sprint(limitErr.Limit)}},
				Outcome: OutcomeLimitReached,
			}, nil
		}
		return Effect{}, err
	}

	m.store.Set(userID, session.Session{State: session.StateAwaitingTemplateName})
	return Effect{Reply: &Reply{Key: "prompt_template_name"}}, nil
}

// BeginSearch starts the search conversation.
func (m *Machine) BeginSearch(userID int64) Effect {
	m.store.Set(userID, session.Session{State: session.StateAwaitingSearchQuery})
	return Effect{Reply: &Reply{Key: "prompt_search_query"}}
}

// BeginRename starts the rename conversation for one document.
func (m *Machine) BeginRename(userID, documentID int64) Effect {
	m.store.Set(userID, session.Session{
		State: session.StateAwaitingNewName,
		Edit:  &session.EditDraft{DocumentID: documentID},
	})
	return Effect{Reply: &Reply{Key: "prompt_new_name"}}
}

// BeginEditDates starts the two-step date edit for one document.
func (m *Machine) BeginEditDates(userID, documentID int64) Effect {
	m.store.Set(userID, session.Session{
		State: session.StateAwaitingEditStart,
		Edit:  &session.EditDraft{DocumentID: documentID},
	})
	return Effect{Reply: &Reply{Key: "prompt_edit_start", Keyboard: Keyboard{Kind: KeyboardStartDate}}}
}

// BeginEditTemplate starts the template reassignment for one document.
func (m *Machine) BeginEditTemplate(ctx context.Context, userID, documentID int64) (Effect, error) {
	templates, err := m.templates.ListTemplates(ctx, userID)
	if err != nil {
		return Effect{}, err
	}
	if len(templates) == 0 {
		return Effect{Reply: &Reply{Key: "no_templates_yet"}}, nil
	}

	m.store.Set(userID, session.Session{
		State: session.StateAwaitingEditTemplate,
		Edit:  &session.EditDraft{DocumentID: documentID},
	})
	return Effect{Reply: &Reply{
		Key:      "prompt_edit_template",
		Keyboard: Keyboard{Kind: KeyboardTemplatePicker, Templates: templates},
	}}, nil
}

func (m *Machine) handleFile(ctx context.Context, userID int64, in Input) (Effect, error) {
	restarted := m.store.Active(userID)
	if restarted {
		m.logger.Info("conversation restarted by new file",
			"user_id", userID,
			"state", m.store.Get(userID).State.String())
	}

	if _, err := m.users.RegisterUser(ctx, userID, in.Username, in.FirstName); err != nil {
		return Effect{}, err
	}

	if err := m.documents.CheckUploadAllowed(ctx, userID); err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			m.store.Clear(userID)
			return Effect{
				Reply:   &Reply{Key: "limit_reached_documents", Data: map[string]string{"limit": fmt.Sprint(limitErr.Limit)}},
				Outcome: OutcomeLimitReached,
			}, nil
		}
		return Effect{}, err
	}

	if err := m.documents.ValidateFile(in.FileName, in.FileSize); err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			m.store.Clear(userID)
			return Effect{
				Reply: &Reply{Key: "file_invalid", Data: map[string]string{"reason": validationErr.Message}},
			}, nil
		}
		return Effect{}, err
	}

	m.store.Set(userID, session.Session{
		State: session.StateAwaitingName,
		Upload: &session.UploadDraft{
			FileID:   in.FileID,
			FileName: in.FileName,
			FileSize: in.FileSize,
		},
	})

	key := "prompt_name"
	if restarted {
		key = "upload_restarted"
	}
	return Effect{Reply: &Reply{Key: key}}, nil
}

func (m *Machine) handleCancel(userID int64) Effect {
	if !m.store.Active(userID) {
		return Effect{Reply: &Reply{Key: "nothing_to_cancel"}}
	}
	m.store.Clear(userID)
	return Effect{Reply: &Reply{Key: "cancelled"}, Outcome: OutcomeDiscarded}
}

func (m *Machine) handleName(sess session.Session, userID int64, in Input) Effect {
	if in.Kind != InputText {
		return Effect{Reply: &Reply{Key: "prompt_name"}}
	}

	name, ok := cleanName(in.Text, config.MinDocumentNameLength, config.MaxDocumentNameLength)
	if !ok {
		return Effect{Reply: &Reply{Key: "name_too_short"}}
	}

	sess.Upload.Name = name
	sess.State = session.StateAwaitingStartDate
	sess.Manual = false
	m.store.Set(userID, sess)

	return Effect{Reply: &Reply{
		Key:      "prompt_start_date",
		Data:     map[string]string{"name": name},
		Keyboard: Keyboard{Kind: KeyboardStartDate},
	}}
}

func (m *Machine) handleStartDate(sess session.Session, userID int64, in Input) Effect {
	date, _, reply := m.resolveDate(&sess, in, false)
	if reply != nil {
		m.store.Set(userID, sess)
		return Effect{Reply: reply}
	}

	sess.Upload.StartDate = date
	sess.State = session.StateAwaitingEndDate
	sess.Manual = false
	m.store.Set(userID, sess)

	return Effect{Reply: &Reply{Key: "prompt_end_date", Keyboard: Keyboard{Kind: KeyboardEndDate}}}
}

func (m *Machine) handleEndDate(ctx context.Context, sess session.Session, userID int64, in Input) (Effect, error) {
	date, skipped, reply := m.resolveDate(&sess, in, true)
	if reply != nil {
		m.store.Set(userID, sess)
		return Effect{Reply: reply}, nil
	}

	if !skipped {
		sess.Upload.EndDate = date
	}
	sess.Manual = false

	// With no templates to offer, the draft is complete.
	templates, err := m.templates.ListTemplates(ctx, userID)
	if err != nil {
		return Effect{}, err
	}
	if len(templates) == 0 {
		return m.persistDraft(ctx, userID, sess, nil), nil
	}

	sess.State = session.StateAwaitingTemplate
	m.store.Set(userID, sess)

	return Effect{Reply: &Reply{
		Key:      "prompt_template",
		Keyboard: Keyboard{Kind: KeyboardTemplatePicker, Templates: templates},
	}}, nil
}

func (m *Machine) handleTemplateChoice(ctx context.Context, sess session.Session, userID int64, in Input) Effect {
	if in.Kind != InputTemplateChoice {
		return Effect{Reply: &Reply{Key: "use_buttons"}}
	}
	return m.persistDraft(ctx, userID, sess, in.TemplateID)
}

func (m *Machine) persistDraft(ctx context.Context, userID int64, sess session.Session, templateID *int64) Effect {
	draft := sess.Upload
	m.store.Clear(userID)

	doc, err := m.documents.UploadDocument(ctx, &services.UploadDocumentRequest{
		OwnerID:    userID,
		Name:       draft.Name,
		FileID:     draft.FileID,
		FileName:   draft.FileName,
		FileSize:   draft.FileSize,
		StartDate:  draft.StartDate,
		EndDate:    draft.EndDate,
		TemplateID: templateID,
	})
	if err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			return Effect{
				Reply:   &Reply{Key: "limit_reached_documents", Data: map[string]string{"limit": fmt.Sprint(limitErr.Limit)}},
				Outcome: OutcomeLimitReached,
			}
		}
		m.logger.Error("document persist failed",
			"user_id", userID,
			"error", err)
		return Effect{Reply: &Reply{Key: "upload_failed"}, Outcome: OutcomeFailed}
	}

	return Effect{
		Reply:    &Reply{Key: "upload_success", Data: map[string]string{"name": doc.Name}},
		Outcome:  OutcomePersisted,
		Document: doc,
	}
}

func (m *Machine) handleTemplateName(ctx context.Context, sess session.Session, userID int64, in Input) Effect {
	if in.Kind != InputText {
		return Effect{Reply: &Reply{Key: "prompt_template_name"}}
	}

	name, ok := cleanName(in.Text, config.MinTemplateNameLength, config.MaxTemplateNameLength)
	if !ok {
		return Effect{Reply: &Reply{Key: "template_name_too_short"}}
	}

	tmpl, err := m.templates.CreateTemplate(ctx, &services.CreateTemplateRequest{
		OwnerID: userID,
		Name:    name,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Keep waiting so the user can try another name.
			return Effect{Reply: &Reply{Key: "template_exists", Data: map[string]string{"name": name}}}
		}
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			m.store.Clear(userID)
			return Effect{
				Reply:   &Reply{Key: "limit_reached_templates", Data: map[string]string{"limit": fmt.Sprint(limitErr.Limit)}},
				Outcome: OutcomeLimitReached,
			}
		}
		m.logger.Error("template persist failed",
			"user_id", userID,
			"error", err)
		m.store.Clear(userID)
		return Effect{Reply: &Reply{Key: "template_failed"}, Outcome: OutcomeFailed}
	}

	m.store.Clear(userID)
	return Effect{
		Reply:   &Reply{Key: "template_created", Data: map[string]string{"name": tmpl.Name}},
		Outcome: OutcomeTemplateCreated,
	}
}

func (m *Machine) handleSearchQuery(ctx context.Context, userID int64, in Input) Effect {
	if in.Kind != InputText {
		return Effect{Reply: &Reply{Key: "prompt_search_query"}}
	}

	m.store.Clear(userID)

	docs, err := m.documents.SearchDocuments(ctx, userID, in.Text)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return Effect{Reply: &Reply{Key: "prompt_search_query"}}
		}
		m.logger.Error("search failed",
			"user_id", userID,
			"error", err)
		return Effect{Reply: &Reply{Key: "search_failed"}, Outcome: OutcomeFailed}
	}

	query := strings.TrimSpace(in.Text)
	if len(docs) == 0 {
		return Effect{Reply: &Reply{
			Key:  "search_no_results",
			Data: map[string]string{"query": query},
		}}
	}

	return Effect{Reply: &Reply{
		Key:      "search_results",
		Data:     map[string]string{"query": query, "count": fmt.Sprint(len(docs))},
		Keyboard: Keyboard{Kind: KeyboardDocuments, Documents: docs},
	}}
}

func (m *Machine) handleNewName(ctx context.Context, sess session.Session, userID int64, in Input) Effect {
	if in.Kind != InputText {
		return Effect{Reply: &Reply{Key: "prompt_new_name"}}
	}

	name, ok := cleanName(in.Text, config.MinDocumentNameLength, config.MaxDocumentNameLength)
	if !ok {
		return Effect{Reply: &Reply{Key: "name_too_short"}}
	}

	docID := sess.Edit.DocumentID
	m.store.Clear(userID)

	doc, err := m.documents.UpdateDocument(ctx, docID, userID, models.UpdateDocumentParams{Name: &name})
	if err != nil {
		return m.updateFailure(userID, err)
	}

	return Effect{
		Reply:    &Reply{Key: "name_updated", Data: map[string]string{"name": doc.Name}},
		Outcome:  OutcomeUpdated,
		Document: doc,
	}
}

func (m *Machine) handleEditStart(sess session.Session, userID int64, in Input) Effect {
	date, _, reply := m.resolveDate(&sess, in, false)
	if reply != nil {
		m.store.Set(userID, sess)
		return Effect{Reply: reply}
	}

	sess.Edit.StartDate = date
	sess.State = session.StateAwaitingEditEnd
	sess.Manual = false
	m.store.Set(userID, sess)

	return Effect{Reply: &Reply{Key: "prompt_edit_end", Keyboard: Keyboard{Kind: KeyboardEndDate}}}
}

func (m *Machine) handleEditEnd(ctx context.Context, sess session.Session, userID int64, in Input) (Effect, error) {
	date, skipped, reply := m.resolveDate(&sess, in, true)
	if reply != nil {
		m.store.Set(userID, sess)
		return Effect{Reply: reply}, nil
	}

	docID := sess.Edit.DocumentID
	params := models.UpdateDocumentParams{StartDate: sess.Edit.StartDate}
	if skipped {
		params.ClearEndDate = true
	} else {
		params.EndDate = date
	}
	m.store.Clear(userID)

	doc, err := m.documents.UpdateDocument(ctx, docID, userID, params)
	if err != nil {
		return m.updateFailure(userID, err), nil
	}

	return Effect{
		Reply:    &Reply{Key: "dates_updated", Data: map[string]string{"name": doc.Name}},
		Outcome:  OutcomeUpdated,
		Document: doc,
	}, nil
}

func (m *Machine) handleEditTemplate(ctx context.Context, sess session.Session, userID int64, in Input) Effect {
	if in.Kind != InputTemplateChoice {
		return Effect{Reply: &Reply{Key: "use_buttons"}}
	}

	docID := sess.Edit.DocumentID
	m.store.Clear(userID)

	params := models.UpdateDocumentParams{}
	if in.TemplateID == nil {
		params.ClearTemplate = true
	} else {
		params.TemplateID = in.TemplateID
	}

	doc, err := m.documents.UpdateDocument(ctx, docID, userID, params)
	if err != nil {
		return m.updateFailure(userID, err)
	}

	return Effect{
		Reply:    &Reply{Key: "template_updated", Data: map[string]string{"name": doc.Name}},
		Outcome:  OutcomeUpdated,
		Document: doc,
	}
}

func (m *Machine) updateFailure(userID int64, err error) Effect {
	if errors.Is(err, domain.ErrNotFound) {
		return Effect{Reply: &Reply{Key: "document_missing"}}
	}
	m.logger.Error("document update failed",
		"user_id", userID,
		"error", err)
	return Effect{Reply: &Reply{Key: "update_failed"}, Outcome: OutcomeFailed}
}

// resolveDate interprets a date step input. It returns exactly one of:
// a date, the skip marker, or a reply that re-prompts without leaving the
// step. Free text only counts as a date after the user chose manual entry.
func (m *Machine) resolveDate(sess *session.Session, in Input, allowSkip bool) (*time.Time, bool, *Reply) {
	switch in.Kind {
	case InputDateChoice:
		switch {
		case in.Choice == "manual":
			sess.Manual = true
			return nil, false, &Reply{Key: "prompt_manual_date"}
		case in.Choice == "skip" && allowSkip:
			return nil, true, nil
		default:
			if d, ok := quickDate(in.Choice, m.now()); ok {
				return &d, false, nil
			}
			return nil, false, &Reply{Key: "use_buttons"}
		}
	case InputText:
		if !sess.Manual {
			return nil, false, &Reply{Key: "use_buttons"}
		}
		d, err := parseManualDate(strings.TrimSpace(in.Text))
		if err != nil {
			return nil, false, &Reply{Key: "date_invalid"}
		}
		return &d, false, nil
	default:
		return nil, false, &Reply{Key: "use_buttons"}
	}
}

// cleanName trims and bounds a user-typed name: too short fails, too long
// is cut at the limit.
func cleanName(text string, min, max int) (string, bool) {
	name := strings.TrimSpace(text)
	runes := []rune(name)
	if len(runes) < min {
		return "", false
	}
	if len(runes) > max {
		name = string(runes[:max])
	}
	return name, true
}
