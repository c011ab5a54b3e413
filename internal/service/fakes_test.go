package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/repositories"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxDocuments:      3,
		MaxTemplates:      2,
		MaxFileSizeMB:     1,
		AllowedExtensions: []string{".pdf", ".jpg", ".zip"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDocRepo is an in-memory DocumentRepository. IDs are assigned in
// creation order and listings iterate in id order, which keeps tests
// deterministic.
type fakeDocRepo struct {
	docs     map[int64]*models.Document
	nextID   int64
	detached []int64
	stats    *models.DocumentStats
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[int64]*models.Document), nextID: 1}
}

func (f *fakeDocRepo) Create(_ context.Context, doc *models.Document) error {
	doc.ID = f.nextID
	f.nextID++
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocRepo) GetByID(_ context.Context, id, ownerID int64) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Message: "document not found"}
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocRepo) ListByOwner(_ context.Context, ownerID int64, templateID *int64) ([]models.Document, error) {
	var out []models.Document
	for id := int64(1); id < f.nextID; id++ {
		doc, ok := f.docs[id]
		if !ok || doc.OwnerID != ownerID {
			continue
		}
		if templateID != nil && (doc.TemplateID == nil || *doc.TemplateID != *templateID) {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeDocRepo) CountByOwner(_ context.Context, ownerID int64) (int, error) {
	n := 0
	for _, doc := range f.docs {
		if doc.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocRepo) Update(_ context.Context, id, ownerID int64, params models.UpdateDocumentParams) error {
	doc, ok := f.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return &domain.NotFoundError{Message: "document not found"}
	}
	if params.Name != nil {
		doc.Name = *params.Name
	}
	if params.StartDate != nil {
		doc.StartDate = params.StartDate
	}
	if params.EndDate != nil {
		doc.EndDate = params.EndDate
	}
	if params.ClearEndDate {
		doc.EndDate = nil
	}
	if params.TemplateID != nil {
		doc.TemplateID = params.TemplateID
	}
	if params.ClearTemplate {
		doc.TemplateID = nil
	}
	if params.Notes != nil {
		doc.Notes = *params.Notes
	}
	return nil
}

func (f *fakeDocRepo) Delete(_ context.Context, id, ownerID int64) error {
	doc, ok := f.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return &domain.NotFoundError{Message: "document not found"}
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocRepo) Search(_ context.Context, ownerID int64, query string) ([]models.Document, error) {
	q := strings.ToLower(query)
	var out []models.Document
	for id := int64(1); id < f.nextID; id++ {
		doc, ok := f.docs[id]
		if !ok || doc.OwnerID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(doc.Name), q) ||
			strings.Contains(strings.ToLower(doc.FileName), q) ||
			strings.Contains(strings.ToLower(doc.Notes), q) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) DetachTemplate(_ context.Context, templateID, ownerID int64) error {
	f.detached = append(f.detached, templateID)
	for _, doc := range f.docs {
		if doc.OwnerID == ownerID && doc.TemplateID != nil && *doc.TemplateID == templateID {
			doc.TemplateID = nil
		}
	}
	return nil
}

func (f *fakeDocRepo) Stats(_ context.Context, _ int64, _ time.Time) (*models.DocumentStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &models.DocumentStats{}, nil
}

func (f *fakeDocRepo) FindExpiringIn(_ context.Context, _ time.Time, _ int) ([]models.Document, error) {
	return nil, nil
}

// fakeTmplRepo is an in-memory TemplateRepository enforcing the same
// per-owner name uniqueness as the real one.
type fakeTmplRepo struct {
	templates map[int64]*models.Template
	nextID    int64
}

func newFakeTmplRepo() *fakeTmplRepo {
	return &fakeTmplRepo{templates: make(map[int64]*models.Template), nextID: 1}
}

func (f *fakeTmplRepo) Create(_ context.Context, tmpl *models.Template) error {
	for _, existing := range f.templates {
		if existing.OwnerID == tmpl.OwnerID && existing.Name == tmpl.Name {
			return &domain.ConflictError{Message: "template already exists"}
		}
	}
	tmpl.ID = f.nextID
	f.nextID++
	copied := *tmpl
	f.templates[tmpl.ID] = &copied
	return nil
}

func (f *fakeTmplRepo) GetByID(_ context.Context, id, ownerID int64) (*models.Template, error) {
	tmpl, ok := f.templates[id]
	if !ok || tmpl.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Message: "template not found"}
	}
	copied := *tmpl
	return &copied, nil
}

func (f *fakeTmplRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Template, error) {
	var out []models.Template
	for id := int64(1); id < f.nextID; id++ {
		tmpl, ok := f.templates[id]
		if !ok || tmpl.OwnerID != ownerID {
			continue
		}
		out = append(out, *tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTmplRepo) CountByOwner(_ context.Context, ownerID int64) (int, error) {
	n := 0
	for _, tmpl := range f.templates {
		if tmpl.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTmplRepo) Delete(_ context.Context, id, ownerID int64) error {
	tmpl, ok := f.templates[id]
	if !ok || tmpl.OwnerID != ownerID {
		return &domain.NotFoundError{Message: "template not found"}
	}
	delete(f.templates, id)
	return nil
}

// fakeReminderRepo records ledger writes.
type fakeReminderRepo struct {
	sent    map[string]bool
	deleted []int64
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{sent: make(map[string]bool)}
}

func (f *fakeReminderRepo) WasSent(_ context.Context, _ int64, _ int) (bool, error) {
	return false, nil
}

func (f *fakeReminderRepo) MarkSent(_ context.Context, _ int64, _ int) error {
	return nil
}

func (f *fakeReminderRepo) DeleteByDocument(_ context.Context, documentID int64) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

// fakeTxManager runs the function directly and counts invocations.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}
