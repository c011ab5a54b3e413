package handler

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/conversation"
	"github.com/DiscordantST/document-bot/internal/dispatch"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/services"
	"github.com/DiscordantST/document-bot/internal/session"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

var handlerToday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *telegram.InlineKeyboardMarkup
}

type editedMessage struct {
	chatID    int64
	messageID int64
	text      string
	keyboard  *telegram.InlineKeyboardMarkup
}

type fakeAPI struct {
	sent    []sentMessage
	edited  []editedMessage
	markups []*telegram.InlineKeyboardMarkup
	answers []string
	files   []string

	sendDocErr error
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return &telegram.Message{MessageID: int64(len(f.sent)), Chat: telegram.Chat{ID: chatID}}, nil
}

func (f *fakeAPI) EditMessageText(_ context.Context, chatID, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	f.edited = append(f.edited, editedMessage{chatID: chatID, messageID: messageID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeAPI) EditMessageReplyMarkup(_ context.Context, _, _ int64, keyboard *telegram.InlineKeyboardMarkup) error {
	f.markups = append(f.markups, keyboard)
	return nil
}

func (f *fakeAPI) AnswerCallbackQuery(_ context.Context, _ string, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeAPI) SendDocument(_ context.Context, _ int64, fileID, _ string) error {
	if f.sendDocErr != nil {
		return f.sendDocErr
	}
	f.files = append(f.files, fileID)
	return nil
}

func (f *fakeAPI) lastSent(t *testing.T) sentMessage {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastEdited(t *testing.T) editedMessage {
	t.Helper()
	if len(f.edited) == 0 {
		t.Fatal("no messages edited")
	}
	return f.edited[len(f.edited)-1]
}

type fakeUsers struct {
	registered []int64
}

func (f *fakeUsers) RegisterUser(_ context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	f.registered = append(f.registered, telegramID)
	return &models.User{TelegramID: telegramID, Username: username, FirstName: firstName}, nil
}

type fakeDocs struct {
	byID      map[int64]*models.Document
	list      []models.Document
	stats     models.DocumentStats
	uploads   []*services.UploadDocumentRequest
	deleted   []int64
	validated []string
}

func (f *fakeDocs) ValidateFile(fileName string, _ int64) error {
	f.validated = append(f.validated, fileName)
	return nil
}

func (f *fakeDocs) CheckUploadAllowed(_ context.Context, _ int64) error { return nil }

func (f *fakeDocs) UploadDocument(_ context.Context, req *services.UploadDocumentRequest) (*models.Document, error) {
	f.uploads = append(f.uploads, req)
	return &models.Document{ID: 99, OwnerID: req.OwnerID, Name: req.Name, FileID: req.FileID}, nil
}

func (f *fakeDocs) GetDocument(_ context.Context, id, ownerID int64) (*models.Document, error) {
	doc, ok := f.byID[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Message: "document not found"}
	}
	return doc, nil
}

func (f *fakeDocs) ListDocuments(_ context.Context, _ int64, _ *int64) ([]models.Document, error) {
	return f.list, nil
}

func (f *fakeDocs) SearchDocuments(_ context.Context, _ int64, _ string) ([]models.Document, error) {
	return f.list, nil
}

func (f *fakeDocs) UpdateDocument(_ context.Context, id, ownerID int64, params models.UpdateDocumentParams) (*models.Document, error) {
	doc := &models.Document{ID: id, OwnerID: ownerID, Name: "doc"}
	if params.Name != nil {
		doc.Name = *params.Name
	}
	return doc, nil
}

func (f *fakeDocs) DeleteDocument(_ context.Context, id, _ int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocs) DocumentStats(_ context.Context, _ int64) (*models.DocumentStats, error) {
	stats := f.stats
	return &stats, nil
}

type fakeTmpls struct {
	templates []models.Template
	created   []*services.CreateTemplateRequest
	deleted   []int64
}

func (f *fakeTmpls) CheckCreateAllowed(_ context.Context, _ int64) error { return nil }

func (f *fakeTmpls) CreateTemplate(_ context.Context, req *services.CreateTemplateRequest) (*models.Template, error) {
	f.created = append(f.created, req)
	return &models.Template{ID: 50, OwnerID: req.OwnerID, Name: req.Name}, nil
}

func (f *fakeTmpls) GetTemplate(_ context.Context, id, ownerID int64) (*models.Template, error) {
	for i := range f.templates {
		if f.templates[i].ID == id && f.templates[i].OwnerID == ownerID {
			return &f.templates[i], nil
		}
	}
	return nil, &domain.NotFoundError{Message: "template not found"}
}

func (f *fakeTmpls) ListTemplates(_ context.Context, _ int64) ([]models.Template, error) {
	return f.templates, nil
}

func (f *fakeTmpls) DeleteTemplate(_ context.Context, id, _ int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// ---------------------------------------------------------------------------
// fixture
// ---------------------------------------------------------------------------

const testUser int64 = 100

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	docs  *fakeDocs
	tmpls *fakeTmpls
	users *fakeUsers
	store *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &fakeAPI{}
	docs := &fakeDocs{byID: map[int64]*models.Document{}}
	tmpls := &fakeTmpls{}
	users := &fakeUsers{}
	store := session.NewStore()
	now := func() time.Time { return handlerToday }

	machine := conversation.NewMachine(store, users, docs, tmpls, logger, now)
	dispatcher := dispatch.New(logger)
	t.Cleanup(dispatcher.Close)

	bot := NewBot(BotConfig{
		API:        api,
		Catalog:    cat,
		Machine:    machine,
		Sessions:   store,
		Users:      users,
		Documents:  docs,
		Templates:  tmpls,
		Dispatcher: dispatcher,
		Logger:     logger,
		Now:        now,
	})

	return &fixture{bot: bot, api: api, docs: docs, tmpls: tmpls, users: users, store: store}
}

func (f *fixture) message(text string) {
	f.bot.process(context.Background(), telegram.Update{Message: &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: testUser, FirstName: "Ann", Username: "ann"},
		Chat:      telegram.Chat{ID: testUser, Type: "private"},
		Text:      text,
	}})
}

func (f *fixture) file(fileID, fileName string) {
	f.bot.process(context.Background(), telegram.Update{Message: &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: testUser, FirstName: "Ann", Username: "ann"},
		Chat:      telegram.Chat{ID: testUser, Type: "private"},
		Document:  &telegram.Document{FileID: fileID, FileName: fileName, FileSize: 1024},
	}})
}

func (f *fixture) photo(fileID, uniqueID string) {
	f.bot.process(context.Background(), telegram.Update{Message: &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: testUser, FirstName: "Ann", Username: "ann"},
		Chat:      telegram.Chat{ID: testUser, Type: "private"},
		Photo: []telegram.PhotoSize{
			{FileID: "small", FileUniqueID: uniqueID, Width: 90, Height: 90},
			{FileID: fileID, FileUniqueID: uniqueID, Width: 800, Height: 800},
		},
	}})
}

func (f *fixture) callback(data string) {
	f.bot.process(context.Background(), telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:      "cb1",
		From:    telegram.User{ID: testUser},
		Message: &telegram.Message{MessageID: 10, Chat: telegram.Chat{ID: testUser}},
		Data:    data,
	}})
}

// ---------------------------------------------------------------------------
// command tests
// ---------------------------------------------------------------------------

func TestStartRegistersAndWelcomes(t *testing.T) {
	f := newFixture(t)

	f.message("/start")

	if len(f.users.registered) != 1 || f.users.registered[0] != testUser {
		t.Errorf("registered = %v, want [%d]", f.users.registered, testUser)
	}
	got := f.api.lastSent(t)
	if !strings.Contains(got.text, "Ann") {
		t.Errorf("welcome = %q, want the first name in it", got.text)
	}
}

func TestCommandAbandonsConversationSilently(t *testing.T) {
	f := newFixture(t)
	f.store.Set(testUser, session.Session{State: session.StateAwaitingName})

	f.message("/help")

	if f.store.Active(testUser) {
		t.Error("conversation still active after command")
	}
	if len(f.api.sent) != 1 {
		t.Fatalf("sent %d messages, want just the help text", len(f.api.sent))
	}
	if !strings.Contains(f.api.sent[0].text, "/mydocs") {
		t.Errorf("help text = %q", f.api.sent[0].text)
	}
}

func TestCommandWithBotMention(t *testing.T) {
	f := newFixture(t)

	f.message("/help@DocumentBot")

	if !strings.Contains(f.api.lastSent(t).text, "/mydocs") {
		t.Errorf("mention-suffixed command not recognized: %q", f.api.lastSent(t).text)
	}
}

func TestCancelInsideConversation(t *testing.T) {
	f := newFixture(t)
	f.store.Set(testUser, session.Session{State: session.StateAwaitingName, Upload: &session.UploadDraft{FileID: "F1"}})

	f.message("/cancel")

	if f.store.Active(testUser) {
		t.Error("conversation still active after /cancel")
	}
	if !strings.Contains(f.api.lastSent(t).text, "Cancelled") {
		t.Errorf("cancel reply = %q", f.api.lastSent(t).text)
	}
}

func TestCancelWithNothingActive(t *testing.T) {
	f := newFixture(t)

	f.message("/cancel")

	if !strings.Contains(f.api.lastSent(t).text, "nothing to cancel") {
		t.Errorf("cancel reply = %q", f.api.lastSent(t).text)
	}
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)

	f.message("/frobnicate")

	if !strings.Contains(f.api.lastSent(t).text, "/help") {
		t.Errorf("unknown command reply = %q", f.api.lastSent(t).text)
	}
}

func TestMyDocsEmpty(t *testing.T) {
	f := newFixture(t)

	f.message("/mydocs")

	got := f.api.lastSent(t)
	if !strings.Contains(got.text, "no documents yet") {
		t.Errorf("empty list text = %q", got.text)
	}
	if got.keyboard != nil {
		t.Error("empty list should not carry a keyboard")
	}
}

func TestMyDocsShowsStatsAndButtons(t *testing.T) {
	f := newFixture(t)
	f.docs.stats = models.DocumentStats{Total: 2, Active: 1, ExpiringSoon: 1, Expired: 1}
	f.docs.list = []models.Document{
		{ID: 1, OwnerID: testUser, Name: "Passport"},
		{ID: 2, OwnerID: testUser, Name: "Visa"},
	}

	f.message("/mydocs")

	got := f.api.lastSent(t)
	for _, want := range []string{"(2)", "Active: 1", "Expired: 1"} {
		if !strings.Contains(got.text, want) {
			t.Errorf("header %q missing %q", got.text, want)
		}
	}
	if got.keyboard == nil {
		t.Fatal("list keyboard missing")
	}
	if !markupHasToken(got.keyboard, "doc|view|1") || !markupHasToken(got.keyboard, "mydocs|search") {
		t.Errorf("list keyboard tokens = %v", markupTokens(got.keyboard))
	}
}

func TestStatsCommand(t *testing.T) {
	f := newFixture(t)
	f.docs.stats = models.DocumentStats{Total: 5, Active: 3, ExpiringSoon: 1, Expired: 2, Undated: 1}

	f.message("/stats")

	got := f.api.lastSent(t)
	for _, want := range []string{"Total: 5", "Active: 3", "Expired: 2", "Without expiry date: 1"} {
		if !strings.Contains(got.text, want) {
			t.Errorf("stats text %q missing %q", got.text, want)
		}
	}
}

func TestTemplatesCommandEmpty(t *testing.T) {
	f := newFixture(t)

	f.message("/templates")

	got := f.api.lastSent(t)
	if !strings.Contains(got.text, "no templates yet") {
		t.Errorf("templates text = %q", got.text)
	}
	if got.keyboard == nil || !markupHasToken(got.keyboard, "tmpl|create") {
		t.Error("templates keyboard must still offer creation")
	}
	if len(f.users.registered) != 1 {
		t.Errorf("registered = %v, want the caller recorded", f.users.registered)
	}
}

// ---------------------------------------------------------------------------
// upload flow, end to end through messages and callbacks
// ---------------------------------------------------------------------------

func TestUploadFlow(t *testing.T) {
	f := newFixture(t)
	f.tmpls.templates = []models.Template{{ID: 4, OwnerID: testUser, Name: "Identity", DocumentsCount: 1}}

	f.file("FILE_A", "passport.pdf")
	if !strings.Contains(f.api.lastSent(t).text, "What should this document be called") {
		t.Fatalf("after file: %q", f.api.lastSent(t).text)
	}

	f.message("Passport")
	prompt := f.api.lastSent(t)
	if !strings.Contains(prompt.text, "*Passport*") {
		t.Fatalf("after name: %q", prompt.text)
	}
	if prompt.keyboard == nil || !markupHasToken(prompt.keyboard, "start|today") {
		t.Fatal("start date keyboard missing")
	}

	f.callback("start|today")
	edited := f.api.lastEdited(t)
	if !strings.Contains(edited.text, "when does it expire") {
		t.Fatalf("after start date: %q", edited.text)
	}
	if !markupHasToken(edited.keyboard, "end|skip") {
		t.Fatal("end date keyboard missing skip")
	}

	f.callback("end|+1y")
	edited = f.api.lastEdited(t)
	if !strings.Contains(edited.text, "Assign the document to a template") {
		t.Fatalf("after end date: %q", edited.text)
	}
	if !markupHasToken(edited.keyboard, "upload|template|4") {
		t.Fatal("template picker missing template row")
	}

	f.callback("upload|template|4")
	edited = f.api.lastEdited(t)
	if !strings.Contains(edited.text, "Saved *Passport*") {
		t.Fatalf("after template: %q", edited.text)
	}

	if len(f.docs.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(f.docs.uploads))
	}
	up := f.docs.uploads[0]
	if up.FileID != "FILE_A" || up.Name != "Passport" {
		t.Errorf("upload = %+v", up)
	}
	if up.StartDate == nil || !up.StartDate.Equal(handlerToday) {
		t.Errorf("start date = %v, want %v", up.StartDate, handlerToday)
	}
	wantEnd := handlerToday.AddDate(0, 0, 365)
	if up.EndDate == nil || !up.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", up.EndDate, wantEnd)
	}
	if up.TemplateID == nil || *up.TemplateID != 4 {
		t.Errorf("template = %v, want 4", up.TemplateID)
	}
	if f.store.Active(testUser) {
		t.Error("conversation still active after completed upload")
	}
}

func TestPhotoGetsSynthesizedName(t *testing.T) {
	f := newFixture(t)

	f.photo("PHOTO_BIG", "uniq42")

	if len(f.docs.validated) != 1 || f.docs.validated[0] != "photo_uniq42.jpg" {
		t.Errorf("validated names = %v, want [photo_uniq42.jpg]", f.docs.validated)
	}
}

// ---------------------------------------------------------------------------
// callback tests
// ---------------------------------------------------------------------------

func TestCallbackAnsweredExactlyOnce(t *testing.T) {
	f := newFixture(t)

	f.callback("noop")

	if len(f.api.answers) != 1 {
		t.Errorf("answered %d times, want exactly once", len(f.api.answers))
	}
}

func TestFailedCallbackAnsweredWithError(t *testing.T) {
	f := newFixture(t)

	// Malformed id propagates as a routing error from the handler.
	f.callback("doc|view|notanumber")

	if len(f.api.answers) != 1 {
		t.Fatalf("answered %d times, want exactly once", len(f.api.answers))
	}
	if !strings.Contains(f.api.answers[0], "went wrong") {
		t.Errorf("error toast = %q", f.api.answers[0])
	}
}

func TestUnroutedCallbackStillAnswered(t *testing.T) {
	f := newFixture(t)

	f.callback("bogus|thing|1")

	if len(f.api.answers) != 1 {
		t.Errorf("answered %d times, want exactly once", len(f.api.answers))
	}
}

func TestStaleDateButtonAcknowledged(t *testing.T) {
	f := newFixture(t)

	// No conversation in progress; tapping a leftover date keyboard does
	// nothing but must clear the spinner.
	f.callback("start|today")

	if len(f.api.answers) != 1 {
		t.Errorf("answered %d times, want exactly once", len(f.api.answers))
	}
	if len(f.api.edited) != 0 {
		t.Errorf("edited %d messages, want none", len(f.api.edited))
	}
}

func TestDocumentViewCallback(t *testing.T) {
	f := newFixture(t)
	end := handlerToday.AddDate(0, 0, 10)
	f.docs.byID[7] = &models.Document{ID: 7, OwnerID: testUser, Name: "Passport", FileName: "p.pdf", FileType: "pdf", EndDate: &end}

	f.callback("doc|view|7")

	edited := f.api.lastEdited(t)
	if !strings.Contains(edited.text, "*Passport*") || !strings.Contains(edited.text, "expires in 10 days") {
		t.Errorf("card = %q", edited.text)
	}
	for _, tok := range []string{"doc|download|7", "doc|edit|7", "doc|delete|7"} {
		if !markupHasToken(edited.keyboard, tok) {
			t.Errorf("card keyboard missing %q", tok)
		}
	}
}

func TestDocumentViewMissing(t *testing.T) {
	f := newFixture(t)

	f.callback("doc|view|7")

	if !strings.Contains(f.api.lastEdited(t).text, "no longer exists") {
		t.Errorf("missing doc text = %q", f.api.lastEdited(t).text)
	}
}

func TestDeleteConfirmThenExecute(t *testing.T) {
	f := newFixture(t)
	f.docs.byID[7] = &models.Document{ID: 7, OwnerID: testUser, Name: "Passport"}

	f.callback("doc|delete|7")
	confirm := f.api.lastEdited(t)
	if !strings.Contains(confirm.text, "Delete *Passport*") {
		t.Fatalf("confirm text = %q", confirm.text)
	}
	if !markupHasToken(confirm.keyboard, "doc|delete_yes|7") || !markupHasToken(confirm.keyboard, "doc|view|7") {
		t.Fatalf("confirm keyboard tokens = %v", markupTokens(confirm.keyboard))
	}
	if len(f.docs.deleted) != 0 {
		t.Fatal("confirmation must not delete anything")
	}

	f.callback("doc|delete_yes|7")
	if len(f.docs.deleted) != 1 || f.docs.deleted[0] != 7 {
		t.Errorf("deleted = %v, want [7]", f.docs.deleted)
	}
	if !strings.Contains(f.api.lastEdited(t).text, "Deleted *Passport*") {
		t.Errorf("deleted text = %q", f.api.lastEdited(t).text)
	}
}

func TestDownloadCallback(t *testing.T) {
	f := newFixture(t)
	f.docs.byID[7] = &models.Document{ID: 7, OwnerID: testUser, Name: "Passport", FileID: "FILE_A"}

	f.callback("doc|download|7")

	if len(f.api.files) != 1 || f.api.files[0] != "FILE_A" {
		t.Errorf("sent files = %v, want [FILE_A]", f.api.files)
	}
}

func TestDownloadMissingDocumentToasts(t *testing.T) {
	f := newFixture(t)

	f.callback("doc|download|7")

	if len(f.api.files) != 0 {
		t.Error("nothing should be sent for a missing document")
	}
	if len(f.api.answers) != 1 || !strings.Contains(f.api.answers[0], "no longer exists") {
		t.Errorf("answers = %v", f.api.answers)
	}
}

func TestTemplateCreateFlow(t *testing.T) {
	f := newFixture(t)

	f.callback("tmpl|create")
	if !strings.Contains(f.api.lastSent(t).text, "template be called") {
		t.Fatalf("create prompt = %q", f.api.lastSent(t).text)
	}

	f.message("Insurance")
	if len(f.tmpls.created) != 1 || f.tmpls.created[0].Name != "Insurance" {
		t.Errorf("created = %+v", f.tmpls.created)
	}
	if !strings.Contains(f.api.lastSent(t).text, "*Insurance*") {
		t.Errorf("created reply = %q", f.api.lastSent(t).text)
	}
}

func TestTemplateViewAndDelete(t *testing.T) {
	f := newFixture(t)
	f.tmpls.templates = []models.Template{{ID: 4, OwnerID: testUser, Name: "Identity", DocumentsCount: 2}}

	f.callback("tmpl|view|4")
	view := f.api.lastEdited(t)
	if !strings.Contains(view.text, "*Identity*") || !strings.Contains(view.text, "Documents: 2") {
		t.Fatalf("template view = %q", view.text)
	}

	f.callback("tmpl|delete|4")
	if !markupHasToken(f.api.lastEdited(t).keyboard, "tmpl|delete_yes|4") {
		t.Fatal("delete confirmation keyboard missing")
	}

	f.callback("tmpl|delete_yes|4")
	if len(f.tmpls.deleted) != 1 || f.tmpls.deleted[0] != 4 {
		t.Errorf("deleted = %v, want [4]", f.tmpls.deleted)
	}
}

func TestTemplateDocsPaging(t *testing.T) {
	f := newFixture(t)
	f.tmpls.templates = []models.Template{{ID: 4, OwnerID: testUser, Name: "Identity"}}
	for i := int64(1); i <= 12; i++ {
		f.docs.list = append(f.docs.list, models.Document{ID: i, OwnerID: testUser, Name: "Doc"})
	}

	f.callback("tmpl|docs|4|1")

	edited := f.api.lastEdited(t)
	if !strings.Contains(edited.text, "Identity") {
		t.Fatalf("header = %q, want the template name", edited.text)
	}
	if !markupHasToken(edited.keyboard, "doc|view|11") || markupHasToken(edited.keyboard, "doc|view|1") {
		t.Errorf("second page tokens = %v, want docs 11-12 only", markupTokens(edited.keyboard))
	}
	if !markupHasToken(edited.keyboard, "tmpl|docs|4|0") {
		t.Error("second page missing prev nav")
	}
	if !markupHasToken(edited.keyboard, "tmpl|view|4") {
		t.Error("missing back row")
	}
}

func TestSearchFromListButton(t *testing.T) {
	f := newFixture(t)
	f.docs.list = []models.Document{{ID: 3, OwnerID: testUser, Name: "Visa"}}

	f.callback("mydocs|search")
	if !strings.Contains(f.api.lastSent(t).text, "What are you looking for") {
		t.Fatalf("search prompt = %q", f.api.lastSent(t).text)
	}

	f.message("visa")
	results := f.api.lastSent(t)
	if !strings.Contains(results.text, "Found 1") {
		t.Errorf("results text = %q", results.text)
	}
	if !markupHasToken(results.keyboard, "doc|view|3") {
		t.Error("results keyboard missing document row")
	}
}

func TestPickerPageSwapsKeyboardOnly(t *testing.T) {
	f := newFixture(t)
	for i := int64(1); i <= 7; i++ {
		f.tmpls.templates = append(f.tmpls.templates, models.Template{ID: i, OwnerID: testUser, Name: "T"})
	}

	f.callback("upload|tmplpage|1")

	if len(f.api.markups) != 1 {
		t.Fatalf("markup edits = %d, want 1", len(f.api.markups))
	}
	if len(f.api.edited) != 0 {
		t.Error("paging must not rewrite the prompt text")
	}
	if !markupHasToken(f.api.markups[0], "upload|template|6") {
		t.Errorf("second picker page tokens = %v", markupTokens(f.api.markups[0]))
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func markupTokens(markup *telegram.InlineKeyboardMarkup) []string {
	if markup == nil {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.CallbackData)
		}
	}
	return out
}

func markupHasToken(markup *telegram.InlineKeyboardMarkup, token string) bool {
	for _, tok := range markupTokens(markup) {
		if tok == token {
			return true
		}
	}
	return false
}
