// Package pagination slices lists into pages and builds the matching
// navigation actions. It is presentation-agnostic: callers turn NavActions
// into whatever buttons their transport uses.
package pagination

import "fmt"

// Paginate returns the items of the requested zero-based page and the total
// number of pages. totalPages is at least 1 so callers can always render a
// "page 1/1" style indicator. Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 0 || page*pageSize >= len(items) {
		return []T{}, totalPages
	}

	start := page * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], totalPages
}

// NavAction is one navigation control: a label and the callback token it
// fires.
type NavAction struct {
	Label string
	Token string
}

// Nav builds the prev / indicator / next row for a page. The row is empty
// when there is a single page. The indicator is deliberately inert: it
// routes to noop so taps are acknowledged without effect.
func Nav(prefix string, page, totalPages int) []NavAction {
	if totalPages <= 1 {
		return nil
	}

	nav := make([]NavAction, 0, 3)
	if page > 0 {
		nav = append(nav, NavAction{
			Label: "◀️",
			Token: fmt.Sprintf("%s|%d", prefix, page-1),
		})
	}
	nav = append(nav, NavAction{
		Label: fmt.Sprintf("%d/%d", page+1, totalPages),
		Token: "noop",
	})
	if page < totalPages-1 {
		nav = append(nav, NavAction{
			Label: "▶️",
			Token: fmt.Sprintf("%s|%d", prefix, page+1),
		})
	}

	return nav
}
