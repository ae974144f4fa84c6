// Package poller is an engine that fetches pending messages from an HTTP API
// at a fixed cadence and posts the replies back.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/engines/reply"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// Name is the identifier the engine is registered under.
const Name = "poller"

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxFailures = 3
)

var ErrPollFailed = errors.New("poll failed")

// Update is one message returned by the polled endpoint.
type Update struct {
	Conversation string `json:"conversation"`
	Sender       string `json:"sender,omitempty"`
	Text         string `json:"text"`
}

// Reply is posted to reply_url for every answered update.
type Reply struct {
	Conversation string `json:"conversation"`
	Text         string `json:"text"`
}

// Engine polls one endpoint from a single task.
type Engine struct {
	name        string
	url         string
	replyURL    string
	interval    time.Duration
	maxFailures int

	client   *resty.Client
	handlers handlers.Set
	store    *conversations.Store
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New builds the engine. Options: "url" (required), "interval", "reply_url"
// and "max_failures", the number of consecutive failed polls after which the
// task gives up; 0 retries forever.
func New(opts *engine.Options) (engine.Engine, error) {
	e := &Engine{
		name:     opts.EngineName(),
		client:   opts.NetworkClient(),
		handlers: opts.Handlers(),
		store:    opts.Conversations(),
	}
	e.logger = slog.Default().WithGroup("poller.Engine").With("engine", e.name)

	var err error
	if e.url, err = opts.RequireString("url"); err != nil {
		return nil, err
	}
	if e.replyURL, err = opts.String("reply_url", ""); err != nil {
		return nil, err
	}
	if e.interval, err = opts.Duration("interval", DefaultInterval); err != nil {
		return nil, err
	}
	if e.maxFailures, err = opts.Int("max_failures", DefaultMaxFailures); err != nil {
		return nil, err
	}
	if e.interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", engine.ErrInvalidOption)
	}
	if e.client == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrMissingOption, engine.KeyNetworkClient)
	}
	return e, nil
}

// Configure validates the endpoints and prepares the poll limiter.
func (e *Engine) Configure(ctx context.Context) error {
	for _, raw := range []string{e.url, e.replyURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an http(s) URL", engine.ErrInvalidOption, raw)
		}
	}
	e.limiter = rate.NewLimiter(rate.Every(e.interval), 1)
	e.logger.Debug("Poller configured", "url", e.url, "interval", e.interval)
	return nil
}

// Tasks returns the polling task.
func (e *Engine) Tasks() []scheduler.Factory {
	return []scheduler.Factory{
		func() scheduler.Job { return e.poll },
	}
}

func (e *Engine) poll(ctx context.Context, turn *scheduler.Turn) error {
	failures := 0
	for {
		if err := turn.Await(func() error { return e.limiter.Wait(ctx) }); err != nil {
			return err
		}

		var updates []Update
		err := turn.Await(func() error {
			var err error
			updates, err = e.fetch(ctx)
			return err
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, scheduler.ErrHalted) {
				return err
			}
			failures++
			e.logger.Warn("Poll failed", "url", e.url, "failures", failures, "error", err)
			if e.maxFailures > 0 && failures >= e.maxFailures {
				return fmt.Errorf("%w: %d consecutive failures: %w", ErrPollFailed, failures, err)
			}
			continue
		}
		failures = 0

		for _, u := range updates {
			if err := e.handle(ctx, turn, u); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) handle(ctx context.Context, turn *scheduler.Turn, u Update) error {
	msg := handlers.Message{
		Platform:     e.name,
		Conversation: u.Conversation,
		Sender:       u.Sender,
		Text:         u.Text,
	}
	out, err := reply.Answer(ctx, e.handlers, e.store, msg)
	if err != nil {
		e.logger.Warn("Update not answered", "conversation", u.Conversation, "error", err)
		return nil
	}
	if e.replyURL == "" {
		return nil
	}

	err = turn.Await(func() error {
		return e.send(ctx, Reply{Conversation: u.Conversation, Text: out})
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, scheduler.ErrHalted) {
			return err
		}
		e.logger.Warn("Failed to post reply", "url", e.replyURL, "error", err)
	}
	return nil
}

func (e *Engine) fetch(ctx context.Context) ([]Update, error) {
	var updates []Update
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&updates).
		Get(e.url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), e.url)
	}
	return updates, nil
}

func (e *Engine) send(ctx context.Context, r Reply) error {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(r).
		Post(e.replyURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), e.replyURL)
	}
	return nil
}
