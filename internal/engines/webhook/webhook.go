// Package webhook is an engine that receives messages as HTTP POST requests
// on the shared application and answers them in the response.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/engines/reply"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/atlanticdynamic/bottery/internal/webapp"
)

// Name is the identifier the engine is registered under.
const Name = "webhook"

const maxBodyBytes = 1 << 20

// Request is the body a webhook delivery carries.
type Request struct {
	Conversation string `json:"conversation"`
	Sender       string `json:"sender,omitempty"`
	Text         string `json:"text"`
}

// Response is the body returned for an answered message.
type Response struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Engine registers one POST route. It contributes no tasks: every request is
// answered on the scheduler from the HTTP handler.
type Engine struct {
	name     string
	path     string
	app      *webapp.Application
	sched    *scheduler.Scheduler
	handlers handlers.Set
	store    *conversations.Store
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New builds the engine from its options. The optional "path" option defaults
// to "/<engine_name>".
func New(opts *engine.Options) (engine.Engine, error) {
	name := opts.EngineName()
	path, err := opts.String("path", "/"+name)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: path must start with '/', got %q", engine.ErrInvalidOption, path)
	}

	e := &Engine{
		name:     name,
		path:     path,
		app:      opts.Server(),
		sched:    opts.Scheduler(),
		handlers: opts.Handlers(),
		store:    opts.Conversations(),
		logger:   slog.Default().WithGroup("webhook.Engine").With("engine", name),
	}
	if e.app == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrMissingOption, engine.KeyServer)
	}
	if e.sched == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrMissingOption, engine.KeyScheduler)
	}
	return e, nil
}

// Configure registers the delivery route.
func (e *Engine) Configure(ctx context.Context) error {
	if err := e.app.Handle(e.name, e.path, e.ServeHTTP); err != nil {
		return err
	}
	e.logger.Debug("Webhook route registered", "path", e.path)
	return nil
}

// Tasks returns no factories.
func (e *Engine) Tasks() []scheduler.Factory {
	return nil
}

// Path returns the route the engine listens on.
func (e *Engine) Path() string {
	return e.path
}

// ServeHTTP answers one delivery.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid JSON body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, Response{Error: "text is required"})
		return
	}
	if req.Conversation == "" {
		req.Conversation = req.Sender
	}

	msg := handlers.Message{
		Platform:     e.name,
		Conversation: req.Conversation,
		Sender:       req.Sender,
		Text:         req.Text,
	}

	var out string
	err := e.sched.Do(r.Context(), func() error {
		var err error
		out, err = reply.Answer(r.Context(), e.handlers, e.store, msg)
		return err
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, Response{Reply: out})
	case errors.Is(err, handlers.ErrNoMatch):
		writeJSON(w, http.StatusUnprocessableEntity, Response{Error: "no handler for message"})
	case errors.Is(err, scheduler.ErrHalted), errors.Is(err, context.Canceled):
		writeJSON(w, http.StatusServiceUnavailable, Response{Error: "bot is shutting down"})
	default:
		e.logger.Error("Failed to answer delivery", "conversation", msg.Conversation, "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: "handler failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
