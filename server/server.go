// Package server exposes the relay over HTTP.
//
//	POST   /api/function_call          run a dispatch cycle
//	GET    /api/actions                list the action catalogue
//	GET    /api/conversations/{id}     conversation history
//	DELETE /api/conversations/{id}     end a conversation
//	GET    /healthz                    liveness
//	GET    /metrics                    Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/dispatch"
	"github.com/CerealNotFound/function-calling-server/session"
)

const maxBodyBytes = 1 << 20

// Relay is the dispatch surface the server exposes.
type Relay interface {
	Handle(ctx context.Context, conversationID, prompt string) (*dispatch.Result, error)
	History(conversationID string) ([]protocol.Message, error)
	End(ctx context.Context, conversationID string) error
	Actions() []actions.Schema
}

// FunctionCallRequest is the body of POST /api/function_call.
type FunctionCallRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error          string `json:"error"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Option configures the handler.
type Option func(*server)

// WithMetrics serves gatherer on /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *server) { s.metrics = gatherer }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *server) { s.logger = logger }
}

type server struct {
	relay   Relay
	metrics prometheus.Gatherer
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for relay.
func NewHandler(relay Relay, opts ...Option) http.Handler {
	s := &server{relay: relay, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/function_call", s.functionCall)
		r.Get("/actions", s.listActions)
		r.Get("/conversations/{id}", s.history)
		r.Delete("/conversations/{id}", s.endConversation)
	})

	return r
}

func (s *server) functionCall(w http.ResponseWriter, r *http.Request) {
	var body FunctionCallRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("function_call: invalid request body", "error", err)
		return
	}

	result, err := s.relay.Handle(r.Context(), body.ConversationID, body.Prompt)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, dispatch.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dispatch.ErrModelCapability):
		resp := ErrorResponse{Error: dispatch.ErrModelCapability.Error(), ConversationID: body.ConversationID}
		var me *dispatch.ModelError
		if errors.As(err, &me) && me.ConversationID != "" {
			resp.ConversationID = me.ConversationID
		}
		writeJSON(w, http.StatusBadGateway, resp)
		s.logger.Error("function_call: model failure", "conversation_id", resp.ConversationID, "error", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "conversation is busy")
		s.logger.Warn("function_call: conversation busy", "conversation_id", body.ConversationID, "error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		s.logger.Error("function_call failed", "conversation_id", body.ConversationID, "error", err)
	}
}

// ActionResponse is one entry of GET /api/actions.
type ActionResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (s *server) listActions(w http.ResponseWriter, _ *http.Request) {
	schemas := s.relay.Actions()
	out := make([]ActionResponse, 0, len(schemas))
	for _, schema := range schemas {
		tool := schema.Tool()
		out = append(out, ActionResponse{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) history(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	turns, err := s.relay.History(id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		s.logger.Error("history failed", "conversation_id", id, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"turns":           turns,
	})
}

func (s *server) endConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.relay.End(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "conversation is busy")
		s.logger.Warn("end conversation failed", "conversation_id", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// Run serves handler on addr until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("relay listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("relay shutting down")
	return srv.Shutdown(shutdownCtx)
}
