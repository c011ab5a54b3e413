package router

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func claim(name string, hits *[]string) Handler {
	return func(ctx context.Context, cb Callback) (Result, error) {
		*hits = append(*hits, name)
		return Result{Handled: true}, nil
	}
}

func pass(name string, hits *[]string) Handler {
	return func(ctx context.Context, cb Callback) (Result, error) {
		*hits = append(*hits, name)
		return Result{}, nil
	}
}

func dispatch(t *testing.T, r *Router, token string) Result {
	t.Helper()
	action, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken(%q): %v", token, err)
	}
	res, err := r.Dispatch(context.Background(), Callback{UserID: 1, Action: action})
	if err != nil {
		t.Fatalf("Dispatch(%q): %v", token, err)
	}
	return res
}

func TestRouter_ExactMatch(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	r.Register(TierGlobal, Pattern{Namespace: "doc", Verb: "view"}, claim("view", &hits))
	r.Register(TierGlobal, Pattern{Namespace: "doc", Verb: "download"}, claim("download", &hits))

	res := dispatch(t, r, "doc|download|5")

	if !res.Handled {
		t.Fatal("expected the action to be handled")
	}
	if len(hits) != 1 || hits[0] != "download" {
		t.Errorf("hits = %v, want [download]", hits)
	}
}

func TestRouter_PrefixExclusionSeparatesConfirmFromExecute(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	r.Register(TierGlobal,
		Pattern{Namespace: "doc", Verb: "delete", Prefix: true, Exclude: "delete_yes"},
		claim("confirm", &hits))
	r.Register(TierGlobal,
		Pattern{Namespace: "doc", Verb: "delete_yes"},
		claim("execute", &hits))

	dispatch(t, r, "doc|delete|7")
	if len(hits) != 1 || hits[0] != "confirm" {
		t.Fatalf("doc|delete|7 hit %v, want [confirm]", hits)
	}

	hits = nil
	dispatch(t, r, "doc|delete_yes|7")
	if len(hits) != 1 || hits[0] != "execute" {
		t.Fatalf("doc|delete_yes|7 hit %v, want [execute]", hits)
	}
}

func TestRouter_ConversationTierRunsFirst(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	// Global route registered first; the conversation tier must still win.
	r.Register(TierGlobal, Pattern{Namespace: "upload", Verb: "template", Prefix: true}, claim("global", &hits))
	r.Register(TierConversation, Pattern{Namespace: "upload", Verb: "template", Prefix: true}, claim("conversation", &hits))

	dispatch(t, r, "upload|template|3")

	if len(hits) != 1 || hits[0] != "conversation" {
		t.Errorf("hits = %v, want [conversation]", hits)
	}
}

func TestRouter_NotHandledFallsThroughTiers(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	// Conversation route declines (no active session), global claims.
	r.Register(TierConversation, Pattern{Namespace: "start", Verb: "", Prefix: true}, pass("conversation", &hits))
	r.Register(TierGlobal, Pattern{Namespace: "start", Verb: "", Prefix: true}, claim("global", &hits))

	res := dispatch(t, r, "start|today")

	if !res.Handled {
		t.Fatal("expected the global tier to claim the action")
	}
	if len(hits) != 2 || hits[0] != "conversation" || hits[1] != "global" {
		t.Errorf("hits = %v, want [conversation global]", hits)
	}
}

func TestRouter_RegistrationOrderWinsWithinTier(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	r.Register(TierGlobal, Pattern{Namespace: "mydocs", Verb: "list", Prefix: true}, claim("first", &hits))
	r.Register(TierGlobal, Pattern{Namespace: "mydocs", Verb: "list"}, claim("second", &hits))

	dispatch(t, r, "mydocs|list|0")

	if len(hits) != 1 || hits[0] != "first" {
		t.Errorf("hits = %v, want [first]", hits)
	}
}

func TestRouter_UnmatchedTokenIsNotHandled(t *testing.T) {
	var hits []string
	r := New(discardLogger())
	r.Register(TierGlobal, Pattern{Namespace: "doc", Verb: "view"}, claim("view", &hits))

	res := dispatch(t, r, "bogus|thing|1")

	if res.Handled {
		t.Error("unmatched token must not be reported as handled")
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v, want none", hits)
	}
}

func TestPattern_Matches(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		token   string
		want    bool
	}{
		{"exact verb", Pattern{Namespace: "doc", Verb: "view"}, "doc|view|1", true},
		{"wrong namespace", Pattern{Namespace: "doc", Verb: "view"}, "tmpl|view|1", false},
		{"wrong verb", Pattern{Namespace: "doc", Verb: "view"}, "doc|edit|1", false},
		{"prefix matches longer verb", Pattern{Namespace: "doc", Verb: "delete", Prefix: true}, "doc|delete_yes|1", true},
		{"prefix with exclude", Pattern{Namespace: "doc", Verb: "delete", Prefix: true, Exclude: "delete_yes"}, "doc|delete_yes|1", false},
		{"empty prefix matches any verb", Pattern{Namespace: "end", Verb: "", Prefix: true}, "end|skip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := ParseToken(tt.token)
			if err != nil {
				t.Fatalf("ParseToken: %v", err)
			}
			if got := tt.pattern.Matches(action); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
