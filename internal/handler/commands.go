package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/conversation"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/pagination"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

func (b *Bot) processCommand(ctx context.Context, msg *telegram.Message) {
	// "/mydocs@SomeBot" arrives in group-style mentions; strip the suffix.
	command := strings.SplitN(strings.Fields(msg.Text)[0], "@", 2)[0]
	userID := msg.From.ID
	chatID := msg.Chat.ID

	// Any command except /cancel abandons a conversation in progress
	// without comment; /cancel is the conversation's own exit.
	if command != "/cancel" && b.sessions.Active(userID) {
		b.sessions.Clear(userID)
	}

	switch command {
	case "/start":
		b.cmdStart(ctx, chatID, msg.From)
	case "/help":
		b.send(ctx, chatID, "help_text", nil, nil)
	case "/mydocs":
		b.cmdMyDocs(ctx, chatID, userID)
	case "/templates":
		b.cmdTemplates(ctx, chatID, msg.From)
	case "/stats":
		b.cmdStats(ctx, chatID, userID)
	case "/cancel":
		b.cmdCancel(ctx, chatID, userID)
	default:
		b.send(ctx, chatID, "unknown_command", nil, nil)
	}
}

func (b *Bot) cmdStart(ctx context.Context, chatID int64, from *telegram.User) {
	if _, err := b.users.RegisterUser(ctx, from.ID, from.Username, from.FirstName); err != nil {
		b.logger.Error("failed to register user", "user_id", from.ID, "error", err)
	}

	name := from.FirstName
	if name == "" {
		name = "there"
	}
	b.send(ctx, chatID, "start_welcome", map[string]string{"first_name": name}, nil)
}

func (b *Bot) cmdMyDocs(ctx context.Context, chatID, userID int64) {
	text, keyboard, err := b.documentListView(ctx, userID, 0)
	if err != nil {
		b.logger.Error("failed to build document list", "user_id", userID, "error", err)
		b.send(ctx, chatID, "generic_error", nil, nil)
		return
	}
	if _, err := b.api.SendMessage(ctx, chatID, text, keyboard); err != nil {
		b.logger.Error("failed to send document list", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) cmdTemplates(ctx context.Context, chatID int64, from *telegram.User) {
	// Register here too: creating a template may be the user's first
	// write, and templates reference their owner.
	if _, err := b.users.RegisterUser(ctx, from.ID, from.Username, from.FirstName); err != nil {
		b.logger.Error("failed to register user", "user_id", from.ID, "error", err)
	}

	text, keyboard, err := b.templatesView(ctx, from.ID, 0)
	if err != nil {
		b.logger.Error("failed to build template list", "user_id", from.ID, "error", err)
		b.send(ctx, chatID, "generic_error", nil, nil)
		return
	}
	if _, err := b.api.SendMessage(ctx, chatID, text, keyboard); err != nil {
		b.logger.Error("failed to send template list", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) cmdStats(ctx context.Context, chatID, userID int64) {
	stats, err := b.documents.DocumentStats(ctx, userID)
	if err != nil {
		b.logger.Error("failed to load stats", "user_id", userID, "error", err)
		b.send(ctx, chatID, "generic_error", nil, nil)
		return
	}
	b.send(ctx, chatID, "stats_text", statsData(stats), nil)
}

func (b *Bot) cmdCancel(ctx context.Context, chatID, userID int64) {
	effect, err := b.machine.Handle(ctx, userID, conversation.Input{Kind: conversation.InputCancel})
	if err != nil {
		b.logger.Error("cancel failed", "user_id", userID, "error", err)
		b.send(ctx, chatID, "generic_error", nil, nil)
		return
	}
	b.sendEffect(ctx, chatID, effect)
}

func statsData(stats *models.DocumentStats) map[string]string {
	return map[string]string{
		"total":    fmt.Sprint(stats.Total),
		"active":   fmt.Sprint(stats.Active),
		"expiring": fmt.Sprint(stats.ExpiringSoon),
		"expired":  fmt.Sprint(stats.Expired),
		"undated":  fmt.Sprint(stats.Undated),
	}
}

// documentListView builds the /mydocs screen: stats header plus one page
// of documents. Shared by the command and the list callbacks.
func (b *Bot) documentListView(ctx context.Context, userID int64, page int) (string, *telegram.InlineKeyboardMarkup, error) {
	stats, err := b.documents.DocumentStats(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if stats.Total == 0 {
		return b.catalog.Render("mydocs_empty", nil), nil, nil
	}

	docs, err := b.documents.ListDocuments(ctx, userID, nil)
	if err != nil {
		return "", nil, err
	}
	pageDocs, totalPages := pagination.Paginate(docs, page, config.DocumentsPageSize)

	text := b.catalog.Render("mydocs_header", statsData(stats))
	return text, catalog.DocumentListKeyboard(pageDocs, page, totalPages, b.now()), nil
}

// templatesView builds the /templates management screen.
func (b *Bot) templatesView(ctx context.Context, userID int64, page int) (string, *telegram.InlineKeyboardMarkup, error) {
	templates, err := b.templates.ListTemplates(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	if len(templates) == 0 {
		return b.catalog.Render("templates_empty", nil),
			catalog.TemplateBrowseKeyboard(nil, 0, 1), nil
	}

	pageTemplates, totalPages := pagination.Paginate(templates, page, config.TemplatesPageSize)
	text := b.catalog.Render("templates_header", map[string]string{
		"count": fmt.Sprint(len(templates)),
	})
	return text, catalog.TemplateBrowseKeyboard(pageTemplates, page, totalPages), nil
}
