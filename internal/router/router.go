package router

import (
	"context"
	"log/slog"
	"strings"
)

// Tier orders route groups: all conversation routes are consulted before
// any global route, regardless of registration order.
type Tier int

const (
	// TierConversation holds routes that only fire while the user's
	// session expects them. They return not-handled otherwise.
	TierConversation Tier = iota

	// TierGlobal holds routes that are always available.
	TierGlobal
)

// Pattern matches actions by namespace and verb. With Prefix set, any verb
// beginning with Verb matches, except the Exclude verb. The exclusion
// keeps a destructive sibling verb (delete_yes) from being swallowed by
// its confirming prefix route (delete).
type Pattern struct {
	Namespace string
	Verb      string
	Prefix    bool
	Exclude   string
}

// Matches reports whether the pattern applies to the action.
func (p Pattern) Matches(a Action) bool {
	if a.Namespace != p.Namespace {
		return false
	}
	if !p.Prefix {
		return a.Verb == p.Verb
	}
	if p.Exclude != "" && a.Verb == p.Exclude {
		return false
	}
	return strings.HasPrefix(a.Verb, p.Verb)
}

// Callback carries everything a handler needs about the originating
// callback query.
type Callback struct {
	UserID     int64
	ChatID     int64
	MessageID  int64
	CallbackID string
	Action     Action
}

// Result reports whether a handler claimed the action, plus optional toast
// text shown when the callback is acknowledged.
type Result struct {
	Handled bool
	AckText string
}

// Handler processes a routed callback. Returning a not-handled Result
// passes the action on to later routes.
type Handler func(ctx context.Context, cb Callback) (Result, error)

type route struct {
	tier    Tier
	pattern Pattern
	handler Handler
}

// Router is an ordered routing table over callback actions.
type Router struct {
	routes []route
	logger *slog.Logger
}

// New creates an empty router.
func New(logger *slog.Logger) *Router {
	return &Router{logger: logger}
}

// Register appends a route. Within a tier, routes match in registration
// order, so register more specific patterns first.
func (r *Router) Register(tier Tier, pattern Pattern, handler Handler) {
	r.routes = append(r.routes, route{tier: tier, pattern: pattern, handler: handler})
}

// Dispatch walks the tiers in order and runs the first route that claims
// the action. An unclaimed action is logged and reported as not handled;
// the caller still acknowledges the callback so the client spinner stops.
func (r *Router) Dispatch(ctx context.Context, cb Callback) (Result, error) {
	for _, tier := range []Tier{TierConversation, TierGlobal} {
		for _, rt := range r.routes {
			if rt.tier != tier || !rt.pattern.Matches(cb.Action) {
				continue
			}
			res, err := rt.handler(ctx, cb)
			if err != nil {
				return res, err
			}
			if res.Handled {
				return res, nil
			}
		}
	}

	r.logger.Warn("no route for callback",
		"token", cb.Action.Raw,
		"user_id", cb.UserID)
	return Result{}, nil
}
