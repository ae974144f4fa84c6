// Package socketio is an engine that joins a chat network over socket.io,
// answers incoming message events and emits the replies.
package socketio

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
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Name is the identifier the engine is registered under.
const Name = "socketio"

const (
	DefaultNamespace      = "/"
	DefaultEvent          = "message"
	DefaultReplyEvent     = "reply"
	DefaultConnectTimeout = 15 * time.Second
	inboxSize             = 64
)

var (
	ErrConnect     = errors.New("socket.io connection failed")
	ErrInvalidData = errors.New("invalid message event")
)

// Engine keeps one socket.io connection open from a single task.
type Engine struct {
	name           string
	rawURL         string
	baseURL        string
	path           string
	namespace      string
	event          string
	replyEvent     string
	connectTimeout time.Duration

	handlers handlers.Set
	store    *conversations.Store
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New builds the engine. Options: "url" (required), "namespace", "event",
// "reply_event" and "connect_timeout".
func New(opts *engine.Options) (engine.Engine, error) {
	e := &Engine{
		name:     opts.EngineName(),
		handlers: opts.Handlers(),
		store:    opts.Conversations(),
	}
	e.logger = slog.Default().WithGroup("socketio.Engine").With("engine", e.name)

	var err error
	if e.rawURL, err = opts.RequireString("url"); err != nil {
		return nil, err
	}
	if e.namespace, err = opts.String("namespace", DefaultNamespace); err != nil {
		return nil, err
	}
	if e.event, err = opts.String("event", DefaultEvent); err != nil {
		return nil, err
	}
	if e.replyEvent, err = opts.String("reply_event", DefaultReplyEvent); err != nil {
		return nil, err
	}
	if e.connectTimeout, err = opts.Duration("connect_timeout", DefaultConnectTimeout); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure splits the URL into the manager address and the socket.io path.
func (e *Engine) Configure(ctx context.Context) error {
	u, err := url.Parse(e.rawURL)
	if err != nil {
		return fmt.Errorf("%w: url: %w", engine.ErrInvalidOption, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%w: unsupported url scheme %q", engine.ErrInvalidOption, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", engine.ErrInvalidOption)
	}

	e.baseURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	e.path = u.Path
	e.logger.Debug("Socket.io engine configured", "url", e.baseURL, "path", e.path, "namespace", e.namespace)
	return nil
}

// Tasks returns the connection task.
func (e *Engine) Tasks() []scheduler.Factory {
	return []scheduler.Factory{
		func() scheduler.Job { return e.run },
	}
}

func (e *Engine) run(ctx context.Context, turn *scheduler.Turn) error {
	opts := socket.DefaultOptions()
	if e.path != "" {
		opts.SetPath(e.path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(e.baseURL, opts)
	io := manager.Socket(e.namespace, opts)
	defer func() {
		e.logger.Debug("Disconnecting")
		io.Disconnect()
	}()

	connected := make(chan error, 1)
	inbox := make(chan handlers.Message, inboxSize)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := ErrConnect
		if len(errs) > 0 {
			if cause, ok := errs[0].(error); ok {
				err = fmt.Errorf("%w: %w", ErrConnect, cause)
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		e.logger.Warn("Disconnected", "reason", reason)
	})
	io.On(types.EventName(e.event), func(data ...any) {
		msg, err := decodeMessage(e.name, data)
		if err != nil {
			e.logger.Warn("Ignoring event", "event", e.event, "error", err)
			return
		}
		select {
		case inbox <- msg:
		default:
			e.logger.Warn("Inbox full, dropping message", "conversation", msg.Conversation)
		}
	})

	io.Connect()
	err := turn.Await(func() error {
		timer := time.NewTimer(e.connectTimeout)
		defer timer.Stop()
		select {
		case err := <-connected:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("%w: timed out after %s", ErrConnect, e.connectTimeout)
		}
	})
	if err != nil {
		return err
	}
	e.logger.Info("Connected", "sid", io.Id(), "namespace", e.namespace)

	for {
		var msg handlers.Message
		err := turn.Await(func() error {
			select {
			case msg = <-inbox:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return err
		}

		out, err := reply.Answer(ctx, e.handlers, e.store, msg)
		if err != nil {
			e.logger.Warn("Message not answered", "conversation", msg.Conversation, "error", err)
			continue
		}
		io.Emit(e.replyEvent, map[string]any{
			"conversation": msg.Conversation,
			"text":         out,
		})
	}
}

// decodeMessage accepts either a bare string or an object with "text" and
// optional "conversation" and "sender" fields.
func decodeMessage(platform string, data []any) (handlers.Message, error) {
	msg := handlers.Message{Platform: platform}
	if len(data) == 0 {
		return msg, fmt.Errorf("%w: no payload", ErrInvalidData)
	}

	switch v := data[0].(type) {
	case string:
		msg.Text = v
	case map[string]any:
		msg.Text, _ = v["text"].(string)
		msg.Conversation, _ = v["conversation"].(string)
		msg.Sender, _ = v["sender"].(string)
	default:
		return msg, fmt.Errorf("%w: unsupported payload %T", ErrInvalidData, data[0])
	}

	if msg.Text == "" {
		return msg, fmt.Errorf("%w: empty text", ErrInvalidData)
	}
	if msg.Conversation == "" {
		msg.Conversation = msg.Sender
	}
	return msg, nil
}
