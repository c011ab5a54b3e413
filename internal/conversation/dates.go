package conversation

import (
	"time"

	"github.com/DiscordantST/document-bot/internal/domain"
)

// quickDateOffsets are exact day offsets from today. Quick options are
// deliberately not month arithmetic: +1m from January 15 is February 14,
// thirty days later, matching what the button promised when it was shown.
var quickDateOffsets = map[string]int{
	"today": 0,
	"+1m":   30,
	"+3m":   90,
	"+6m":   180,
	"+1y":   365,
	"+2y":   730,
	"+5y":   1825,
}

// manualDateFormats are tried in order; the first successful parse wins.
var manualDateFormats = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
}

// normalizeDay strips the time-of-day so stored dates are calendar days.
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// quickDate resolves a quick-option choice to a concrete date.
func quickDate(choice string, today time.Time) (time.Time, bool) {
	offset, ok := quickDateOffsets[choice]
	if !ok {
		return time.Time{}, false
	}
	return normalizeDay(today).AddDate(0, 0, offset), true
}

// parseManualDate parses a hand-typed date in one of the supported formats.
func parseManualDate(text string) (time.Time, error) {
	for _, layout := range manualDateFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return normalizeDay(t), nil
		}
	}
	return time.Time{}, &domain.ValidationError{
		Message: "unrecognized date, expected DD.MM.YYYY, DD/MM/YYYY or YYYY-MM-DD",
	}
}
