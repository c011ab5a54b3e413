package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// dateLayout matches the first manual entry format, so dates render the
// way users type them.
const dateLayout = "02.01.2006"

// FormatDate renders a calendar day.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// StatusEmoji returns the expiry badge for a document: 📄 no expiry,
// 🔴 expired, 🟠 within a week, 🟡 within a month, 🟢 fine.
func StatusEmoji(doc *models.Document, today time.Time) string {
	days, ok := doc.DaysUntilExpiry(today)
	switch {
	case !ok:
		return "📄"
	case days < 0:
		return "🔴"
	case days <= 7:
		return "🟠"
	case days <= 30:
		return "🟡"
	default:
		return "🟢"
	}
}

// StatusText returns the human-readable expiry state.
func StatusText(doc *models.Document, today time.Time) string {
	days, ok := doc.DaysUntilExpiry(today)
	switch {
	case !ok:
		return "no expiry date"
	case days < 0:
		return fmt.Sprintf("expired %s ago", plural(-days, "day"))
	case days == 0:
		return "expires today!"
	case days == 1:
		return "expires tomorrow!"
	case days <= 30:
		return fmt.Sprintf("expires in %s", plural(days, "day"))
	default:
		return fmt.Sprintf("valid (%s left)", plural(days, "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateLabel shortens s to width runes, marking the cut with an
// ellipsis. Button labels longer than ~40 characters wrap badly on phones.
func TruncateLabel(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// DocumentLabel is the one-line list entry for a document.
func DocumentLabel(doc *models.Document, today time.Time) string {
	return TruncateLabel(
		fmt.Sprintf("%s %s", StatusEmoji(doc, today), doc.Name),
		config.ListLabelWidth,
	)
}

// TemplateLabel is the one-line picker entry for a template.
func TemplateLabel(tmpl *models.Template) string {
	return TruncateLabel(
		fmt.Sprintf("📁 %s (%d)", tmpl.Name, tmpl.DocumentsCount),
		config.PickerLabelWidth,
	)
}

// DocumentDetails renders the full card shown when a document is opened.
// Optional fields are omitted rather than shown empty.
func DocumentDetails(doc *models.Document, today time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s*\n\n", StatusEmoji(doc, today), doc.Name)

	if doc.FileName != "" {
		fmt.Fprintf(&b, "📎 File: %s\n", doc.FileName)
	}
	if doc.FileType != "" {
		fmt.Fprintf(&b, "📋 Type: %s\n", doc.FileType)
	}
	if doc.TemplateName != nil {
		fmt.Fprintf(&b, "📁 Template: %s\n", *doc.TemplateName)
	}
	if doc.StartDate != nil {
		fmt.Fprintf(&b, "📅 Valid from: %s\n", FormatDate(*doc.StartDate))
	}
	if doc.EndDate != nil {
		fmt.Fprintf(&b, "⏳ Valid until: %s\n", FormatDate(*doc.EndDate))
	}

	fmt.Fprintf(&b, "\nStatus: %s", StatusText(doc, today))

	if doc.Notes != "" {
		fmt.Fprintf(&b, "\n\n📝 %s", doc.Notes)
	}

	fmt.Fprintf(&b, "\n\n🕐 Added: %s", FormatDate(doc.CreatedAt))

	return b.String()
}
