package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/conversation"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/pagination"
	"github.com/DiscordantST/document-bot/internal/router"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

func (b *Bot) registerRoutes() {
	// Conversation tier: taps that feed the state machine. These run
	// before global routes so an active dialog owns its buttons.
	b.router.Register(router.TierConversation, router.Pattern{Namespace: "start", Prefix: true}, b.onDateChoice)
	b.router.Register(router.TierConversation, router.Pattern{Namespace: "end", Prefix: true}, b.onDateChoice)
	b.router.Register(router.TierConversation, router.Pattern{Namespace: "upload", Verb: "template"}, b.onTemplateChoice)
	b.router.Register(router.TierConversation, router.Pattern{Namespace: "upload", Verb: "tmplpage"}, b.onPickerPage)

	// Global tier: navigation and actions on stored records.
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "noop"}, b.onNoop)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "mydocs", Verb: "list"}, b.onDocumentList)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "mydocs", Verb: "search"}, b.onSearchStart)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "mydocs", Verb: "bytemplates"}, b.onByTemplates)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "doc", Verb: "view"}, b.onDocumentView)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "doc", Verb: "download"}, b.onDocumentDownload)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "doc", Verb: "delete"}, b.onDocumentDeleteConfirm)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "doc", Verb: "delete_yes"}, b.onDocumentDelete)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "doc", Verb: "edit"}, b.onDocumentEditMenu)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "edit", Verb: "name"}, b.onEditName)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "edit", Verb: "dates"}, b.onEditDates)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "edit", Verb: "template"}, b.onEditTemplate)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "templates", Verb: "list"}, b.onTemplatesList)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "templates", Verb: "page"}, b.onTemplatesList)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "tmpl", Verb: "view"}, b.onTemplateView)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "tmpl", Verb: "docs"}, b.onTemplateDocs)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "tmpl", Verb: "delete"}, b.onTemplateDeleteConfirm)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "tmpl", Verb: "delete_yes"}, b.onTemplateDelete)
	b.router.Register(router.TierGlobal, router.Pattern{Namespace: "tmpl", Verb: "create"}, b.onTemplateCreate)
}

// pageArg reads an optional page argument at idx; absent or malformed means
// the first page.
func pageArg(a router.Action, idx int) int {
	if a.Arg(idx) == "" {
		return 0
	}
	page, err := a.IntArg(idx)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// edit replaces the tapped message, tolerating no-op edits.
func (b *Bot) edit(ctx context.Context, cb router.Callback, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	err := b.api.EditMessageText(ctx, cb.ChatID, cb.MessageID, text, keyboard)
	if err != nil && !telegram.IsNotModified(err) {
		return err
	}
	return nil
}

func (b *Bot) editKey(ctx context.Context, cb router.Callback, key string, data map[string]string, keyboard *telegram.InlineKeyboardMarkup) error {
	return b.edit(ctx, cb, b.catalog.Render(key, data), keyboard)
}

func handled() (router.Result, error) {
	return router.Result{Handled: true}, nil
}

// Conversation handlers

func (b *Bot) onDateChoice(ctx context.Context, cb router.Callback) (router.Result, error) {
	effect, err := b.machine.Handle(ctx, cb.UserID, conversation.Input{
		Kind:   conversation.InputDateChoice,
		Choice: cb.Action.Verb,
	})
	if err != nil {
		return router.Result{}, err
	}
	if effect.Reply == nil && effect.Outcome == conversation.OutcomeNone {
		// No conversation was waiting for this button; let it fall through.
		return router.Result{}, nil
	}
	if err := b.editEffect(ctx, cb.ChatID, cb.MessageID, effect); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateChoice(ctx context.Context, cb router.Callback) (router.Result, error) {
	in := conversation.Input{Kind: conversation.InputTemplateChoice}
	if cb.Action.Arg(0) != "skip" {
		id, err := cb.Action.Int64Arg(0)
		if err != nil {
			return router.Result{}, err
		}
		in.TemplateID = &id
	}

	effect, err := b.machine.Handle(ctx, cb.UserID, in)
	if err != nil {
		return router.Result{}, err
	}
	if effect.Reply == nil && effect.Outcome == conversation.OutcomeNone {
		return router.Result{}, nil
	}
	if err := b.editEffect(ctx, cb.ChatID, cb.MessageID, effect); err != nil {
		return router.Result{}, err
	}
	return handled()
}

// onPickerPage repages the template picker in place. Only the keyboard
// changes; the prompt text above it stays.
func (b *Bot) onPickerPage(ctx context.Context, cb router.Callback) (router.Result, error) {
	page, err := cb.Action.IntArg(0)
	if err != nil {
		return router.Result{}, err
	}

	templates, err := b.templates.ListTemplates(ctx, cb.UserID)
	if err != nil {
		return router.Result{}, err
	}
	pageTemplates, totalPages := pagination.Paginate(templates, page, config.TemplatePickerPageSize)

	markup := catalog.TemplatePickerKeyboard(pageTemplates, page, totalPages)
	if err := b.api.EditMessageReplyMarkup(ctx, cb.ChatID, cb.MessageID, markup); err != nil && !telegram.IsNotModified(err) {
		return router.Result{}, err
	}
	return handled()
}

// Global handlers

func (b *Bot) onNoop(_ context.Context, _ router.Callback) (router.Result, error) {
	return handled()
}

func (b *Bot) onDocumentList(ctx context.Context, cb router.Callback) (router.Result, error) {
	text, keyboard, err := b.documentListView(ctx, cb.UserID, pageArg(cb.Action, 0))
	if err != nil {
		return router.Result{}, err
	}
	if err := b.edit(ctx, cb, text, keyboard); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onSearchStart(ctx context.Context, cb router.Callback) (router.Result, error) {
	effect := b.machine.BeginSearch(cb.UserID)
	b.sendEffect(ctx, cb.ChatID, effect)
	return handled()
}

func (b *Bot) onByTemplates(ctx context.Context, cb router.Callback) (router.Result, error) {
	page := pageArg(cb.Action, 0)

	templates, err := b.templates.ListTemplates(ctx, cb.UserID)
	if err != nil {
		return router.Result{}, err
	}
	if len(templates) == 0 {
		if err := b.editKey(ctx, cb, "no_templates_yet", nil, catalog.ByTemplateKeyboard(nil, 0, 1)); err != nil {
			return router.Result{}, err
		}
		return handled()
	}

	pageTemplates, totalPages := pagination.Paginate(templates, page, config.TemplatesPageSize)
	if err := b.editKey(ctx, cb, "bytemplate_header", nil, catalog.ByTemplateKeyboard(pageTemplates, page, totalPages)); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onDocumentView(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	doc, err := b.documents.GetDocument(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "document_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	text := catalog.DocumentDetails(doc, b.now())
	if err := b.edit(ctx, cb, text, catalog.DocumentActionsKeyboard(doc.ID)); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onDocumentDownload(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	doc, err := b.documents.GetDocument(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return router.Result{Handled: true, AckText: b.catalog.Render("document_missing", nil)}, nil
		}
		return router.Result{}, err
	}

	if err := b.api.SendDocument(ctx, cb.ChatID, doc.FileID, doc.Name); err != nil {
		b.logger.Error("failed to resend document", "document_id", id, "error", err)
		return router.Result{Handled: true, AckText: b.catalog.Render("download_failed", nil)}, nil
	}
	return handled()
}

func (b *Bot) onDocumentDeleteConfirm(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	doc, err := b.documents.GetDocument(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "document_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	confirm := catalog.ConfirmKeyboard(
		fmt.Sprintf("doc|delete_yes|%d", id),
		fmt.Sprintf("doc|view|%d", id),
	)
	if err := b.editKey(ctx, cb, "delete_confirm", map[string]string{"name": doc.Name}, confirm); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onDocumentDelete(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	doc, err := b.documents.GetDocument(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "document_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	if err := b.documents.DeleteDocument(ctx, id, cb.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "document_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	if err := b.editKey(ctx, cb, "deleted", map[string]string{"name": doc.Name}, nil); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onDocumentEditMenu(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	doc, err := b.documents.GetDocument(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "document_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	text := catalog.DocumentDetails(doc, b.now())
	if err := b.edit(ctx, cb, text, catalog.EditMenuKeyboard(doc.ID)); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onEditName(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	effect := b.machine.BeginRename(cb.UserID, id)
	b.sendEffect(ctx, cb.ChatID, effect)
	return handled()
}

func (b *Bot) onEditDates(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	effect := b.machine.BeginEditDates(cb.UserID, id)
	if err := b.editEffect(ctx, cb.ChatID, cb.MessageID, effect); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onEditTemplate(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	effect, err := b.machine.BeginEditTemplate(ctx, cb.UserID, id)
	if err != nil {
		return router.Result{}, err
	}
	if err := b.editEffect(ctx, cb.ChatID, cb.MessageID, effect); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplatesList(ctx context.Context, cb router.Callback) (router.Result, error) {
	text, keyboard, err := b.templatesView(ctx, cb.UserID, pageArg(cb.Action, 0))
	if err != nil {
		return router.Result{}, err
	}
	if err := b.edit(ctx, cb, text, keyboard); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateView(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	tmpl, err := b.templates.GetTemplate(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "template_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	data := map[string]string{"name": tmpl.Name, "count": fmt.Sprint(tmpl.DocumentsCount)}
	if err := b.editKey(ctx, cb, "template_view", data, catalog.TemplateActionsKeyboard(tmpl.ID)); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateDocs(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	tmpl, err := b.templates.GetTemplate(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "template_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	docs, err := b.documents.ListDocuments(ctx, cb.UserID, &id)
	if err != nil {
		return router.Result{}, err
	}
	page := pageArg(cb.Action, 1)
	pageDocs, totalPages := pagination.Paginate(docs, page, config.DocumentsPageSize)

	key := "template_docs_header"
	if len(docs) == 0 {
		key = "template_docs_empty"
	}
	keyboard := catalog.TemplateDocsKeyboard(pageDocs, tmpl.ID, page, totalPages, b.now())
	if err := b.editKey(ctx, cb, key, map[string]string{"name": tmpl.Name}, keyboard); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateDeleteConfirm(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	tmpl, err := b.templates.GetTemplate(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "template_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	confirm := catalog.ConfirmKeyboard(
		fmt.Sprintf("tmpl|delete_yes|%d", id),
		fmt.Sprintf("tmpl|view|%d", id),
	)
	if err := b.editKey(ctx, cb, "template_delete_confirm", map[string]string{"name": tmpl.Name}, confirm); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateDelete(ctx context.Context, cb router.Callback) (router.Result, error) {
	id, err := cb.Action.Int64Arg(0)
	if err != nil {
		return router.Result{}, err
	}

	tmpl, err := b.templates.GetTemplate(ctx, id, cb.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "template_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	if err := b.templates.DeleteTemplate(ctx, id, cb.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := b.editKey(ctx, cb, "template_missing", nil, nil); err != nil {
				return router.Result{}, err
			}
			return handled()
		}
		return router.Result{}, err
	}

	if err := b.editKey(ctx, cb, "template_deleted", map[string]string{"name": tmpl.Name}, nil); err != nil {
		return router.Result{}, err
	}
	return handled()
}

func (b *Bot) onTemplateCreate(ctx context.Context, cb router.Callback) (router.Result, error) {
	effect, err := b.machine.BeginTemplateCreate(ctx, cb.UserID)
	if err != nil {
		return router.Result{}, err
	}
	b.sendEffect(ctx, cb.ChatID, effect)
	return handled()
}
