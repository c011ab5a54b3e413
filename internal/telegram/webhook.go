package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/DiscordantST/document-bot/internal/httputil"
)

// secretTokenHeader carries the value registered with setWebhook; requests
// without it did not come from the Bot API.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookServer receives updates pushed by the Bot API instead of polling.
type WebhookServer struct {
	secret string
	sink   UpdateSink
	logger *slog.Logger
}

// NewWebhookServer creates a webhook receiver. An empty secret disables
// the header check.
func NewWebhookServer(secret string, sink UpdateSink, logger *slog.Logger) *WebhookServer {
	return &WebhookServer{
		secret: secret,
		sink:   sink,
		logger: logger,
	}
}

// Handler returns the HTTP handler serving the webhook and health routes.
func (s *WebhookServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook", s.handleUpdate)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.recoverPanics(mux)
}

// recoverPanics converts a panic into a 500 so Telegram redelivers the
// update instead of seeing a dropped connection.
func (s *WebhookServer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)

				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Serve runs the listener until ctx is cancelled, then shuts down
// gracefully.
func (s *WebhookServer) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("webhook listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *WebhookServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" && r.Header.Get(secretTokenHeader) != s.secret {
		s.logger.Warn("webhook request with invalid secret token", "remote", r.RemoteAddr)
		httputil.RespondError(w, http.StatusUnauthorized, "invalid secret token")
		return
	}

	var update Update
	if err := httputil.ParseJSON(w, r, &update); err != nil {
		s.logger.Warn("malformed webhook payload", "error", err)
		httputil.RespondError(w, http.StatusBadRequest, "malformed update payload")
		return
	}

	s.sink.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

func (s *WebhookServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
