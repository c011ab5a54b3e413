package catalog

import (
	"fmt"
	"time"

	"github.com/DiscordantST/document-bot/internal/domain/models"
	"github.com/DiscordantST/document-bot/internal/pagination"
	"github.com/DiscordantST/document-bot/internal/telegram"
)

// quickDateChoices defines the quick option order. Tokens match what the
// conversation machine resolves; labels are what the user sees.
var quickDateChoices = []struct {
	choice string
	label  string
}{
	{"today", ""}, // label carries the concrete date
	{"+1m", "+1 month"},
	{"+3m", "+3 months"},
	{"+6m", "+6 months"},
	{"+1y", "+1 year"},
	{"+2y", "+2 years"},
	{"+5y", "+5 years"},
}

func button(label, token string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: label, CallbackData: token}
}

// DateKeyboard builds the quick date options for the given namespace
// (start or end), two per row, followed by manual entry and, for end
// dates, a skip row.
func DateKeyboard(namespace string, today time.Time, allowSkip bool) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, 6)

	row := make([]telegram.InlineKeyboardButton, 0, 2)
	for _, q := range quickDateChoices {
		label := q.label
		if q.choice == "today" {
			label = fmt.Sprintf("📅 Today (%s)", FormatDate(today))
		}
		row = append(row, button(label, namespace+"|"+q.choice))
		if len(row) == 2 {
			rows = append(rows, row)
			row = make([]telegram.InlineKeyboardButton, 0, 2)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []telegram.InlineKeyboardButton{
		button("⌨️ Enter manually", namespace+"|manual"),
	})
	if allowSkip {
		rows = append(rows, []telegram.InlineKeyboardButton{
			button("♾ No expiry", namespace+"|skip"),
		})
	}

	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmKeyboard builds a destructive-action confirmation row. cancelToken
// usually routes back to the view the confirmation replaced.
func ConfirmKeyboard(yesToken, cancelToken string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{
			button("✅ Yes, delete", yesToken),
			button("❌ Cancel", cancelToken),
		},
	}}
}

// DocumentActionsKeyboard builds the action buttons under a document card.
func DocumentActionsKeyboard(docID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{
			button("📥 Download", fmt.Sprintf("doc|download|%d", docID)),
			button("✏️ Edit", fmt.Sprintf("doc|edit|%d", docID)),
		},
		{
			button("🗑 Delete", fmt.Sprintf("doc|delete|%d", docID)),
		},
		{
			button("⬅️ Back", "mydocs|list"),
		},
	}}
}

// EditMenuKeyboard builds the edit submenu for a document.
func EditMenuKeyboard(docID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{button("✏️ Name", fmt.Sprintf("edit|name|%d", docID))},
		{button("📅 Dates", fmt.Sprintf("edit|dates|%d", docID))},
		{button("📁 Template", fmt.Sprintf("edit|template|%d", docID))},
		{button("⬅️ Back", fmt.Sprintf("doc|view|%d", docID))},
	}}
}

// navRow converts pagination actions into a button row. Returns nil for a
// single page so callers can append unconditionally.
func navRow(prefix string, page, totalPages int) []telegram.InlineKeyboardButton {
	actions := pagination.Nav(prefix, page, totalPages)
	if len(actions) == 0 {
		return nil
	}
	row := make([]telegram.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		row = append(row, button(a.Label, a.Token))
	}
	return row
}

// DocumentListKeyboard builds the paged document list with navigation and
// filter shortcuts.
func DocumentListKeyboard(docs []models.Document, page, totalPages int, today time.Time) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(docs)+2)
	for i := range docs {
		doc := &docs[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(DocumentLabel(doc, today), fmt.Sprintf("doc|view|%d", doc.ID)),
		})
	}
	if nav := navRow("mydocs|list", page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		button("🔍 Search", "mydocs|search"),
		button("📁 By template", "mydocs|bytemplates"),
	})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// SearchResultsKeyboard lists matched documents without navigation.
func SearchResultsKeyboard(docs []models.Document, today time.Time) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(DocumentLabel(doc, today), fmt.Sprintf("doc|view|%d", doc.ID)),
		})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// TemplatePickerKeyboard builds the template chooser used inside upload and
// edit conversations. Selection routes through the upload namespace; the
// machine tells the flows apart by session state.
func TemplatePickerKeyboard(templates []models.Template, page, totalPages int) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(templates)+2)
	for i := range templates {
		tmpl := &templates[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(TemplateLabel(tmpl), fmt.Sprintf("upload|template|%d", tmpl.ID)),
		})
	}
	if nav := navRow("upload|tmplpage", page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		button("📂 Without template", "upload|template|skip"),
	})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// TemplateBrowseKeyboard builds the /templates management list.
func TemplateBrowseKeyboard(templates []models.Template, page, totalPages int) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(templates)+2)
	for i := range templates {
		tmpl := &templates[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(TemplateLabel(tmpl), fmt.Sprintf("tmpl|view|%d", tmpl.ID)),
		})
	}
	if nav := navRow("templates|page", page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		button("➕ New template", "tmpl|create"),
	})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// TemplateActionsKeyboard builds the action buttons under a template card.
func TemplateActionsKeyboard(tmplID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{button("📄 Documents", fmt.Sprintf("tmpl|docs|%d", tmplID))},
		{button("🗑 Delete", fmt.Sprintf("tmpl|delete|%d", tmplID))},
		{button("⬅️ Back", "templates|list")},
	}}
}

// TemplateDocsKeyboard lists one page of a template's documents with a way
// back to the template card.
func TemplateDocsKeyboard(docs []models.Document, tmplID int64, page, totalPages int, today time.Time) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(docs)+2)
	for i := range docs {
		doc := &docs[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(DocumentLabel(doc, today), fmt.Sprintf("doc|view|%d", doc.ID)),
		})
	}
	if nav := navRow(fmt.Sprintf("tmpl|docs|%d", tmplID), page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		button("⬅️ Back", fmt.Sprintf("tmpl|view|%d", tmplID)),
	})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ByTemplateKeyboard lets the user pick a template to browse its documents.
func ByTemplateKeyboard(templates []models.Template, page, totalPages int) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(templates)+2)
	for i := range templates {
		tmpl := &templates[i]
		rows = append(rows, []telegram.InlineKeyboardButton{
			button(TemplateLabel(tmpl), fmt.Sprintf("tmpl|docs|%d", tmpl.ID)),
		})
	}
	if nav := navRow("mydocs|bytemplates", page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		button("📄 All documents", "mydocs|list"),
	})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
