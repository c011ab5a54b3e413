// Package router dispatches callback tokens to registered handlers.
//
// Tokens follow the namespace|verb|args... grammar, e.g. doc|view|17 or
// mydocs|list|2. The namespace groups related actions, the verb selects
// one, and everything after it is positional arguments.
package router

import (
	"strconv"
	"strings"

	"github.com/DiscordantST/document-bot/internal/domain"
)

// Action is a parsed callback token.
type Action struct {
	Namespace string
	Verb      string
	Args      []string
	Raw       string
}

// ParseToken splits a raw callback token into an Action. Tokens without a
// namespace are malformed.
func ParseToken(raw string) (Action, error) {
	if raw == "" {
		return Action{}, &domain.RoutingError{Token: raw, Message: "empty callback token"}
	}

	parts := strings.Split(raw, "|")
	if parts[0] == "" {
		return Action{}, &domain.RoutingError{Token: raw, Message: "callback token has no namespace"}
	}

	action := Action{Namespace: parts[0], Raw: raw}
	if len(parts) > 1 {
		action.Verb = parts[1]
	}
	if len(parts) > 2 {
		action.Args = parts[2:]
	}

	return action, nil
}

// Arg returns the i-th argument, or "" when absent.
func (a Action) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Int64Arg parses the i-th argument as an int64 id.
func (a Action) Int64Arg(i int) (int64, error) {
	n, err := strconv.ParseInt(a.Arg(i), 10, 64)
	if err != nil {
		return 0, &domain.RoutingError{Token: a.Raw, Message: "argument is not a valid id"}
	}
	return n, nil
}

// IntArg parses the i-th argument as an int, for page numbers.
func (a Action) IntArg(i int) (int, error) {
	n, err := strconv.Atoi(a.Arg(i))
	if err != nil {
		return 0, &domain.RoutingError{Token: a.Raw, Message: "argument is not a valid number"}
	}
	return n, nil
}
