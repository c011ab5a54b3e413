package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DiscordantST/document-bot/internal/domain"
	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/domain/services"
)

func newTmplService(t *testing.T) (services.TemplateService, *fakeTmplRepo, *fakeDocRepo, *fakeTxManager) {
	t.Helper()
	templates := newFakeTmplRepo()
	docs := newFakeDocRepo()
	tx := &fakeTxManager{}
	svc := NewTemplateService(templates, docs, tx, testConfig(), discardLogger())
	return svc, templates, docs, tx
}

func TestCreateTemplate(t *testing.T) {
	svc, _, _, _ := newTmplService(t)

	tmpl, err := svc.CreateTemplate(context.Background(), &services.CreateTemplateRequest{
		OwnerID: 100,
		Name:    "Insurance",
	})
	if err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}
	if tmpl.ID == 0 {
		t.Error("CreateTemplate() did not assign an id")
	}
	if tmpl.Name != "Insurance" {
		t.Errorf("Name = %q, want Insurance", tmpl.Name)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	svc, _, _, _ := newTmplService(t)

	tests := []struct {
		name string
		req  *services.CreateTemplateRequest
	}{
		{name: "name too short", req: &services.CreateTemplateRequest{OwnerID: 100, Name: "A"}},
		{name: "name too long", req: &services.CreateTemplateRequest{OwnerID: 100, Name: strings.Repeat("a", 51)}},
		{name: "missing owner", req: &services.CreateTemplateRequest{Name: "Insurance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateTemplate() error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateTemplateDuplicateName(t *testing.T) {
	svc, _, _, _ := newTmplService(t)
	ctx := context.Background()

	if _, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 100, Name: "Insurance"}); err != nil {
		t.Fatalf("first CreateTemplate() error = %v", err)
	}

	_, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 100, Name: "Insurance"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate CreateTemplate() error = %v, want conflict", err)
	}

	// The same name is free for a different owner
	if _, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 200, Name: "Insurance"}); err != nil {
		t.Errorf("CreateTemplate() for second owner error = %v", err)
	}
}

func TestCreateTemplateAtCap(t *testing.T) {
	svc, _, _, _ := newTmplService(t)
	ctx := context.Background()

	// testConfig caps templates at 2
	for _, name := range []string{"Personal", "Insurance"} {
		if _, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 100, Name: name}); err != nil {
			t.Fatalf("CreateTemplate(%q) error = %v", name, err)
		}
	}

	_, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 100, Name: "Work"})
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Errorf("CreateTemplate() at cap error = %v, want limit exceeded", err)
	}
}

func TestDeleteTemplateDetachesDocuments(t *testing.T) {
	svc, templates, docs, tx := newTmplService(t)
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, &services.CreateTemplateRequest{OwnerID: 100, Name: "Insurance"})
	if err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	doc := &models.Document{OwnerID: 100, Name: "Car policy", FileID: "FILE_1", TemplateID: &tmpl.ID}
	if err := docs.Create(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	if err := svc.DeleteTemplate(ctx, tmpl.ID, 100); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}

	if tx.calls != 1 {
		t.Errorf("transaction used %d times, want 1", tx.calls)
	}
	if len(docs.detached) != 1 || docs.detached[0] != tmpl.ID {
		t.Errorf("DetachTemplate called with %v, want [%d]", docs.detached, tmpl.ID)
	}

	// The document survives, unlinked
	survived, err := docs.GetByID(ctx, doc.ID, 100)
	if err != nil {
		t.Fatalf("document did not survive template deletion: %v", err)
	}
	if survived.TemplateID != nil {
		t.Errorf("TemplateID = %v, want nil after detach", *survived.TemplateID)
	}

	if _, err := templates.GetByID(ctx, tmpl.ID, 100); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("template still present after delete: %v", err)
	}
}

func TestDeleteTemplateMissing(t *testing.T) {
	svc, _, docs, _ := newTmplService(t)

	err := svc.DeleteTemplate(context.Background(), 42, 100)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteTemplate(missing) error = %v, want not found", err)
	}
	if len(docs.detached) != 0 {
		t.Errorf("documents detached for a missing template: %v", docs.detached)
	}
}
