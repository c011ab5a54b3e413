// Package handler turns incoming Telegram updates into service calls and
// rendered replies. It owns update classification, command parsing and
// callback routing; conversation state lives in the machine.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/conversation"
	"github.com/DiscordantST/document-bot/internal/dispatch"
	"github.com/DiscordantST/document-bot/internal/domain/services"
	"github.com/DiscordantST/document-bot/internal/pagination"
	"github.com/DiscordantST/document-bot/internal/router"
	"github.com/DiscordantST/document-bot/internal/session"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

// updateTimeout bounds the processing of a single update, long-running
// database calls included.
const updateTimeout = 30 * time.Second

// API is the slice of the Bot API the handlers drive. *telegram.Client
// satisfies it; tests substitute a recorder.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) error
}

// BotConfig wires the bot's collaborators.
type BotConfig struct {
	API        API
	Catalog    *catalog.Catalog
	Machine    *conversation.Machine
	Sessions   *session.Store
	Users      services.UserService
	Documents  services.DocumentService
	Templates  services.TemplateService
	Dispatcher *dispatch.Dispatcher
	Logger     *slog.Logger
	Now        func() time.Time
}

// Bot processes updates end to end. It implements telegram.UpdateSink.
type Bot struct {
	api        API
	catalog    *catalog.Catalog
	router     *router.Router
	machine    *conversation.Machine
	sessions   *session.Store
	users      services.UserService
	documents  services.DocumentService
	templates  services.TemplateService
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewBot creates the bot and registers its callback routes.
func NewBot(cfg BotConfig) *Bot {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	b := &Bot{
		api:        cfg.API,
		catalog:    cfg.Catalog,
		router:     router.New(cfg.Logger),
		machine:    cfg.Machine,
		sessions:   cfg.Sessions,
		users:      cfg.Users,
		documents:  cfg.Documents,
		templates:  cfg.Templates,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	b.registerRoutes()
	return b
}

// HandleUpdate queues one update onto the sender's serial lane. The
// request context is not carried into the job; processing gets its own
// deadline so webhook delivery can return immediately.
func (b *Bot) HandleUpdate(_ context.Context, update telegram.Update) {
	userID := updateUserID(update)
	if userID == 0 {
		return
	}

	queued := b.dispatcher.Enqueue(userID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		b.process(ctx, update)
	})
	if !queued {
		b.logger.Warn("update dropped", "user_id", userID, "update_id", update.UpdateID)
	}
}

// updateUserID extracts the acting user; zero means nothing actionable.
func updateUserID(update telegram.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func (b *Bot) process(ctx context.Context, update telegram.Update) {
	switch {
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *telegram.Message) {
	from := msg.From
	if from == nil || from.IsBot {
		return
	}

	switch {
	case msg.Document != nil:
		b.feedMachine(ctx, msg.Chat.ID, from.ID, conversation.Input{
			Kind:      conversation.InputFile,
			FileID:    msg.Document.FileID,
			FileName:  msg.Document.FileName,
			FileSize:  msg.Document.FileSize,
			Username:  from.Username,
			FirstName: from.FirstName,
		})

	case len(msg.Photo) > 0:
		// Telegram sends photo renditions smallest first; store the
		// largest. Photos have no file name, so synthesize one.
		photo := msg.Photo[len(msg.Photo)-1]
		b.feedMachine(ctx, msg.Chat.ID, from.ID, conversation.Input{
			Kind:      conversation.InputFile,
			FileID:    photo.FileID,
			FileName:  fmt.Sprintf("photo_%s.jpg", photo.FileUniqueID),
			FileSize:  photo.FileSize,
			Username:  from.Username,
			FirstName: from.FirstName,
		})

	case strings.HasPrefix(msg.Text, "/"):
		b.processCommand(ctx, msg)

	case msg.Text != "":
		b.feedMachine(ctx, msg.Chat.ID, from.ID, conversation.Input{
			Kind: conversation.InputText,
			Text: msg.Text,
		})
	}
}

// feedMachine advances the conversation and renders the effect as a new
// message.
func (b *Bot) feedMachine(ctx context.Context, chatID, userID int64, in conversation.Input) {
	effect, err := b.machine.Handle(ctx, userID, in)
	if err != nil {
		b.logger.Error("conversation step failed", "user_id", userID, "error", err)
		b.send(ctx, chatID, "generic_error", nil, nil)
		return
	}
	b.sendEffect(ctx, chatID, effect)
}

func (b *Bot) processCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	// Old keyboards can outlive their message; nothing to act on then,
	// but the spinner must still be cleared.
	if cb.Message == nil {
		b.answer(ctx, cb.ID, "")
		return
	}

	action, err := router.ParseToken(cb.Data)
	if err != nil {
		b.logger.Warn("unparseable callback token", "data", cb.Data, "user_id", cb.From.ID)
		b.answer(ctx, cb.ID, "")
		return
	}

	result, err := b.router.Dispatch(ctx, router.Callback{
		UserID:     cb.From.ID,
		ChatID:     cb.Message.Chat.ID,
		MessageID:  cb.Message.MessageID,
		CallbackID: cb.ID,
		Action:     action,
	})

	ackText := result.AckText
	if err != nil {
		b.logger.Error("callback failed", "token", cb.Data, "user_id", cb.From.ID, "error", err)
		ackText = b.catalog.Render("generic_error", nil)
	}

	// Exactly one answer per callback, success or not.
	b.answer(ctx, cb.ID, ackText)
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if err := b.api.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
}

// send renders a catalog key and sends it as a new message.
func (b *Bot) send(ctx context.Context, chatID int64, key string, data map[string]string, keyboard *telegram.InlineKeyboardMarkup) {
	if _, err := b.api.SendMessage(ctx, chatID, b.catalog.Render(key, data), keyboard); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "key", key, "error", err)
	}
}

// sendEffect renders a conversation effect as a new message.
func (b *Bot) sendEffect(ctx context.Context, chatID int64, effect conversation.Effect) {
	if effect.Reply == nil {
		return
	}
	b.send(ctx, chatID, effect.Reply.Key, effect.Reply.Data, b.effectKeyboard(effect.Reply.Keyboard))
}

// editEffect renders a conversation effect by replacing the tapped
// message, keeping button-driven flows inside a single evolving message.
func (b *Bot) editEffect(ctx context.Context, chatID, messageID int64, effect conversation.Effect) error {
	if effect.Reply == nil {
		return nil
	}
	text := b.catalog.Render(effect.Reply.Key, effect.Reply.Data)
	err := b.api.EditMessageText(ctx, chatID, messageID, text, b.effectKeyboard(effect.Reply.Keyboard))
	if err != nil && !telegram.IsNotModified(err) {
		return err
	}
	return nil
}

// effectKeyboard materializes the machine's symbolic keyboard request.
func (b *Bot) effectKeyboard(kb conversation.Keyboard) *telegram.InlineKeyboardMarkup {
	switch kb.Kind {
	case conversation.KeyboardStartDate:
		return catalog.DateKeyboard("start", b.now(), false)
	case conversation.KeyboardEndDate:
		return catalog.DateKeyboard("end", b.now(), true)
	case conversation.KeyboardTemplatePicker:
		pageTemplates, totalPages := pagination.Paginate(kb.Templates, kb.Page, config.TemplatePickerPageSize)
		return catalog.TemplatePickerKeyboard(pageTemplates, kb.Page, totalPages)
	case conversation.KeyboardDocuments:
		return catalog.SearchResultsKeyboard(kb.Documents, b.now())
	default:
		return nil
	}
}
